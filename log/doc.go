// Package log is the leveled, structured logger of mare, built on
// [log/slog].
//
// A [Logger] is an immutable value made with [Make] and derived with
// [Logger.With] and [Logger.Wrap], so it can be handed to the parser,
// the engine and the scheduler workers without locking.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("loaded", slog.String("path", "Marefile"))
//	logger.Error("build failed", slog.Any("error", err))
//
// # Configuration
//
// Configure the logger using functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// The package-level functions write through a default logger that
// [Config] reconfigures and [SetDefault] replaces.
//
// # Context-Aware Logging
//
// Each level has a context-aware and a context-unaware variant. The
// context-unaware variants use [DefaultContextProvider], which returns
// [context.TODO] by default.
//
// # Supported Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Messages below the configured level
// are discarded. The zero [Logger] discards everything.
//
// # Output Formats
//
// Two output formats are supported: [FormatText] (default) and
// [FormatJSON]. With [WithPretty], keys and values are colored using
// lipgloss styles when the output is a terminal.
package log
