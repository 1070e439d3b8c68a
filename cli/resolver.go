package cli

import (
	"context"
	"io"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/craflin/mare-sub000/engine"
	"github.com/craflin/mare-sub000/log"
)

// resolve returns a [kong.ConfigurationLoader] for configuration files
// written in the Marefile language. It can be used with
// [kong.Configuration]:
//
//	kong.Configuration(resolve(ctx), "/path/to/config")
//
// Every key of the file names a flag, with hyphens written as underscores.
// The words of the key are the flag value, joined with commas for flags that
// take a list:
//
//	jobs = "4"
//	log_level = "debug"
//	configuration = { Debug, Release }
//	if host == "Win32" {
//	  log_pretty = "false"
//	}
//
// The keys host and tool are bound as they are for a Marefile. Command-line
// flags override config file values.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		text, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		e := engine.New(engine.WithLogger(log.Default()))

		e.AddDefaultKey("host", hostName())
		e.AddDefaultKey("tool", "mare")

		if err := e.LoadString(ctx, baseConfig, string(text)); err != nil {
			return nil, err
		}

		return makeConfig(e), nil
	}
}

// makeConfig flattens the root namespace of e into a config.
func makeConfig(e *engine.Engine) config {
	cfg := config{}

	e.EnterRootKey()

	for _, key := range e.Keys() {
		e.PushKey()

		if e.EnterKey(key, false) {
			if words := e.Keys(); len(words) > 0 {
				cfg[key] = strings.Join(words, ",")
			}
		}

		e.PopKey()
	}

	return cfg
}

// config implements [kong.Resolver] over the keys of a configuration file.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Flag names use hyphens, which end a word in the Marefile language.
	name := flag.Name
	underscoreName := strings.ReplaceAll(name, "-", "_")

	if value, ok := r[name]; ok {
		return value, nil
	}

	if value, ok := r[underscoreName]; ok {
		return value, nil
	}

	return nil, nil
}
