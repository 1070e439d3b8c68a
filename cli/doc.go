// Package cli contains the command line interface for mare.
//
// # Usage
//
//	mare [flags] [TARGET|KEY=VALUE ...]
//	mare clean [flags] [TARGET|KEY=VALUE ...]
//	mare rebuild [flags] [TARGET|KEY=VALUE ...]
//	mare query [flags] [TARGET|KEY=VALUE ...]
//
// build is the default command. Without targets every target of the first
// platform and configuration is visited.
//
// # Configuration Files
//
// Flag defaults are read from two files in the user configuration
// directory, for example ~/.config/mare:
//
//   - config.json, a JSON object keyed by flag name
//   - config, written in the Marefile language (see [resolve])
//
// Command-line flags override both.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (text, json)
//   - --log-time-layout: timestamp layout (RFC3339, Kitchen, ...)
//   - --log-caller: include caller information
//   - --log-pretty: colorize output on terminals
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: profile to record (see [profile.Modes])
//   - --pprof-dir: output directory, by default below the cache directory
package cli
