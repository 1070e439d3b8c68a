package profile

// Tag is the build tag that enables profiling. It also names the directory
// profiles are written to below the cache directory.
const Tag = "pprof"

// Session is a running profile. Stop writes it to disk.
type Session interface{ Stop() }

// Option changes how a profile is recorded.
type Option func(*settings)

type settings struct {
	quiet bool
	hook  bool
}

// WithQuiet suppresses the messages printed when a profile starts and stops.
func WithQuiet(quiet bool) Option {
	return func(s *settings) { s.quiet = quiet }
}

// WithShutdownHook stops the profile and exits on an interrupt. It is on
// by default. Disable it when the caller handles interrupts itself, as the
// build scheduler does to wait for running commands.
func WithShutdownHook(enable bool) Option {
	return func(s *settings) { s.hook = enable }
}

// Start records the profile named mode into dir, or into a temporary
// directory when dir is empty. It returns a session that does nothing when
// mode is empty or not one of [Modes], which is always the case in a binary
// built without [Tag].
func Start(mode, dir string, opts ...Option) Session {
	s := settings{hook: true}
	for _, opt := range opts {
		opt(&s)
	}

	if mode == "" {
		return ignore{}
	}

	return start(mode, dir, s)
}

type ignore struct{}

func (ignore) Stop() {}
