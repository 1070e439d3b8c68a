package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"runtime"

	"github.com/craflin/mare-sub000/log"
)

// Mode selects what a run does with the rules it visits.
type Mode int

const (
	// ModeBuild runs the commands of outdated rules.
	ModeBuild Mode = iota
	// ModeClean removes the outputs of every rule and the directories left
	// empty.
	ModeClean
	// ModeRebuild removes the outputs of every rule and runs all commands.
	ModeRebuild
)

func (m Mode) String() string {
	switch m {
	case ModeBuild:
		return "build"
	case ModeClean:
		return "clean"
	case ModeRebuild:
		return "rebuild"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Scheduler runs a [RuleSet] with a bounded number of concurrent commands.
//
// All graph state is owned by the goroutine calling [Scheduler.Run]. The
// only other goroutines wait for a started process and report its exit.
type Scheduler struct {
	fs      FileSystem
	spawner Spawner
	jobs    int
	mode    Mode
	out     io.Writer
	logger  log.Logger
}

// Option configures a Scheduler or a Builder.
type Option func(*config)

type config struct {
	fs      FileSystem
	spawner Spawner
	jobs    int
	mode    Mode
	out     io.Writer
	logger  log.Logger
	noDeps  bool
}

// WithFileSystem sets the file system used for timestamps and cleanup.
func WithFileSystem(fs FileSystem) Option {
	return func(c *config) { c.fs = fs }
}

// WithSpawner sets how commands are started.
func WithSpawner(s Spawner) Option {
	return func(c *config) { c.spawner = s }
}

// WithJobs sets the maximum number of concurrent commands. Values below one
// select the number of CPUs.
func WithJobs(n int) Option {
	return func(c *config) { c.jobs = n }
}

// WithMode sets the run mode.
func WithMode(m Mode) Option {
	return func(c *config) { c.mode = m }
}

// WithOutput sets where rule messages are printed.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.out = w }
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithIgnoreDependencies stops requested targets from activating the
// targets they depend on. Dependency edges to targets that are active anyway
// are kept.
func WithIgnoreDependencies(ignore bool) Option {
	return func(c *config) { c.noDeps = ignore }
}

func makeConfig(opts ...Option) config {
	c := config{
		fs:      OSFileSystem{},
		spawner: ShellSpawner{},
		out:     io.Discard,
	}

	for _, opt := range opts {
		opt(&c)
	}

	if c.jobs < 1 {
		c.jobs = runtime.NumCPU()
	}

	return c
}

// NewScheduler returns a Scheduler configured by opts.
func NewScheduler(opts ...Option) *Scheduler {
	c := makeConfig(opts...)

	return &Scheduler{
		fs:      c.fs,
		spawner: c.spawner,
		jobs:    c.jobs,
		mode:    c.mode,
		out:     c.out,
		logger:  c.logger,
	}
}

type exit struct {
	rule *Rule
	err  error
}

// Run executes the active rules of rs. A rule starts only after every rule
// it depends on has finished. Once a command fails no further commands are
// started, but running ones are waited for. Rules left unfinished without
// a failure indicate a dependency cycle.
func (s *Scheduler) Run(ctx context.Context, rs *RuleSet) error {
	var (
		queue   []*Rule
		running int
		failure error
		exited  = make(chan exit)
	)

	rs.finishedRules = 0

	for _, t := range rs.active {
		for _, r := range t.Rules {
			if r.pending == 0 {
				queue = append(queue, r)
			}
		}
	}

	for {
		for failure == nil && running < s.jobs && len(queue) > 0 {
			if err := ctx.Err(); err != nil {
				failure = err

				break
			}

			r := queue[0]
			queue = queue[1:]

			started, err := s.start(ctx, r, exited)
			if err != nil {
				failure = err

				break
			}

			if started {
				running++
			} else {
				queue = s.finish(rs, r, queue)
			}
		}

		if running == 0 {
			break
		}

		e := <-exited
		running--

		if e.err != nil {
			if failure == nil {
				failure = ErrCommand.Wrap(e.err).With(
					slog.String("rule", e.rule.Name),
					slog.String("command", e.rule.Command[e.rule.command]),
				)
			}

			continue
		}

		e.rule.command++

		if e.rule.command < len(e.rule.Command) {
			if failure != nil {
				continue
			}

			if err := s.spawn(ctx, e.rule, exited); err != nil {
				failure = err

				continue
			}

			running++

			continue
		}

		queue = s.finish(rs, e.rule, queue)
	}

	if failure != nil {
		s.logger.ErrorContext(ctx, "build failed", slog.Any("error", failure))

		return failure
	}

	if rs.finishedRules < rs.activeRules {
		return ErrCircularDependency.With(
			slog.Int("finished", rs.finishedRules),
			slog.Int("active", rs.activeRules),
		)
	}

	return nil
}

// start decides whether r must run and starts its first command. It
// reports false if r has nothing to run.
func (s *Scheduler) start(
	ctx context.Context,
	r *Rule,
	exited chan<- exit,
) (bool, error) {
	r.rebuild = s.decide(ctx, r)
	if !r.rebuild || len(r.Command) == 0 {
		return false, nil
	}

	for _, msg := range r.Message {
		fmt.Fprintln(s.out, msg)
	}

	for _, out := range r.Output {
		dir := path.Dir(filepath.ToSlash(out))
		if dir == "." {
			continue
		}

		if err := s.fs.MkdirAll(dir); err != nil {
			return false, ErrOutputDir.Wrap(err).With(
				slog.String("rule", r.Name),
				slog.String("dir", dir),
			)
		}
	}

	r.command = 0

	return true, s.spawn(ctx, r, exited)
}

func (s *Scheduler) spawn(ctx context.Context, r *Rule, exited chan<- exit) error {
	command := r.Command[r.command]

	s.logger.DebugContext(ctx, "run",
		slog.String("rule", r.Name),
		slog.String("command", command),
	)

	p, err := s.spawner.Spawn(ctx, command)
	if err != nil {
		return ErrCommand.Wrap(err).With(
			slog.String("rule", r.Name),
			slog.String("command", command),
		)
	}

	go func() { exited <- exit{rule: r, err: p.Wait()} }()

	return nil
}

// finish marks r done and queues the dependents it unblocks. Dependents
// that unblock further rules go to the front of the queue.
func (s *Scheduler) finish(rs *RuleSet, r *Rule, queue []*Rule) []*Rule {
	r.finished = true
	rs.finishedRules++

	for _, d := range r.dependents {
		if r.rebuild {
			d.dirty = true
		}

		d.pending--
		if d.pending > 0 {
			continue
		}

		if len(d.dependents) > 0 {
			queue = append([]*Rule{d}, queue...)
		} else {
			queue = append(queue, d)
		}
	}

	return queue
}
