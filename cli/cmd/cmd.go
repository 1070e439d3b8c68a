package cmd

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/craflin/mare-sub000/build"
	"github.com/craflin/mare-sub000/engine"
	"github.com/craflin/mare-sub000/log"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	projectKey struct{}
	outputKey  struct{}
)

// Project locates the Marefile a command loads.
type Project struct {
	// Dir is the directory commands run in and paths are relative to.
	Dir string
	// File is the Marefile path, relative to Dir unless absolute.
	File string
}

// WithProject returns a new context.Context containing p.
func WithProject(ctx context.Context, p Project) context.Context {
	return context.WithValue(ctx, projectKey{}, p)
}

func projectFrom(ctx context.Context) Project {
	p, _ := ctx.Value(projectKey{}).(Project)

	if p.Dir == "" {
		p.Dir = "."
	}

	if p.File == "" {
		p.File = "Marefile"
	}

	return p
}

// WithOutput returns a new context.Context whose commands print to w.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// outputFrom returns the writer stored by WithOutput, the kong context's
// standard output, or os.Stdout.
func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// splitArgs separates key=value assignments from target names.
func splitArgs(args []string) (targets []string, keys []build.Key) {
	for _, arg := range args {
		if name, value, ok := strings.Cut(arg, "="); ok && name != "" {
			keys = append(keys, build.Key{Name: name, Value: value})

			continue
		}

		targets = append(targets, arg)
	}

	return targets, keys
}

// load loads the project Marefile with the given command-line keys.
func load(ctx context.Context, keys []build.Key, opts ...build.Option) (*build.Builder, error) {
	p := projectFrom(ctx)

	e := engine.New(
		engine.WithDir(p.Dir),
		engine.WithLogger(log.Default()),
	)

	opts = append([]build.Option{
		build.WithLogger(log.Default()),
		build.WithOutput(outputFrom(ctx)),
	}, opts...)

	b := build.NewBuilder(e, opts...)

	if err := b.Load(ctx, p.File, keys...); err != nil {
		return nil, err
	}

	return b, nil
}
