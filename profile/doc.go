// Package profile provides optional runtime profiling for mare.
//
// Profiling wraps [github.com/pkg/profile] and is compiled in only with the
// pprof build tag:
//
//	go build -tags pprof .
//
// Without the tag [Modes] is empty and [Start] returns a no-op session.
//
// # Modes
//
//   - allocs:    memory allocations
//   - block:     blocking on synchronization primitives
//   - clock:     wall-clock time
//   - cpu:       CPU time
//   - goroutine: goroutine stacks
//   - heap:      live heap
//   - mem:       memory
//   - mutex:     mutex contention
//   - thread:    thread creation
//   - trace:     execution trace
//
// # Usage
//
// A profile is started once and stopped when the run ends:
//
//	defer profile.Start("cpu", dir, profile.WithQuiet(true)).Stop()
//
// The profile is written to dir when Stop is called. A large build spends
// most of its time in child processes, so cpu and trace profiles mainly
// show the scheduler loop and Marefile evaluation.
package profile
