//go:build pprof

package profile

import (
	"maps"
	"slices"

	"github.com/pkg/profile"
)

//nolint:gochecknoglobals
var modes = map[string]func(*profile.Profile){
	"allocs":    profile.MemProfileAllocs,
	"block":     profile.BlockProfile,
	"clock":     profile.ClockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"heap":      profile.MemProfileHeap,
	"mem":       profile.MemProfile,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// Modes returns the names of the supported profiles, sorted.
func Modes() []string { return slices.Sorted(maps.Keys(modes)) }

func start(mode, dir string, s settings) Session {
	fn, ok := modes[mode]
	if !ok {
		return ignore{}
	}

	opts := []func(*profile.Profile){fn}

	if dir != "" {
		opts = append(opts, profile.ProfilePath(dir))
	}

	if s.quiet {
		opts = append(opts, profile.Quiet)
	}

	if !s.hook {
		opts = append(opts, profile.NoShutdownHook)
	}

	return profile.Start(opts...)
}
