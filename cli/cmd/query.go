package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-yaml"

	"github.com/craflin/mare-sub000/build"
	"github.com/craflin/mare-sub000/log"
)

// Query prints the resolved targets of each selected platform and
// configuration without running anything.
type Query struct {
	Platform      []string `help:"Platforms to resolve (default: first declared)."      placeholder:"NAME" short:"p"`
	Configuration []string `help:"Configurations to resolve (default: first declared)." placeholder:"NAME" short:"c"`
	Format        string   `default:"yaml" enum:"yaml,json" help:"Output format." short:"o"`
	Expr          string   `help:"Print only targets for which this expression is true, e.g. 'len(files) > 1'." placeholder:"EXPR" short:"e"`

	Args []string `arg:"" help:"Targets to print and key=value assignments." optional:"" placeholder:"TARGET|KEY=VALUE"`
}

// Run implements the query command.
func (q *Query) Run(ctx context.Context) error {
	names, keys := splitArgs(q.Args)

	match, err := compileFilter(q.Expr)
	if err != nil {
		return err
	}

	b, err := load(ctx, keys)
	if err != nil {
		return err
	}

	variants, err := b.Select(build.Request{
		Platforms:      q.Platform,
		Configurations: q.Configuration,
	})
	if err != nil {
		return err
	}

	cfgs := make([]build.Configuration, 0, len(variants))

	for _, v := range variants {
		cfg, err := b.Resolve(v.Platform, v.Configuration)
		if err != nil {
			return err
		}

		if cfg.Targets, err = selectTargets(cfg.Targets, names, match); err != nil {
			return err
		}

		log.DebugContext(ctx, "query",
			slog.String("platform", v.Platform),
			slog.String("configuration", v.Configuration),
			slog.Int("targets", len(cfg.Targets)),
		)

		cfgs = append(cfgs, cfg)
	}

	return write(outputFrom(ctx), q.Format, cfgs)
}

// filter reports whether a target is printed.
type filter func(build.TargetSpec) (bool, error)

// compileFilter compiles an expr-lang predicate over a target. The fields
// of the target are visible under their lower-case names.
func compileFilter(source string) (filter, error) {
	if source == "" {
		return func(build.TargetSpec) (bool, error) { return true, nil }, nil
	}

	program, err := expr.Compile(source, expr.Env(build.TargetSpec{}), expr.AsBool())
	if err != nil {
		return nil, ErrExpr.Wrap(err).With(slog.String("expr", source))
	}

	return func(t build.TargetSpec) (bool, error) {
		return run(program, t)
	}, nil
}

func run(program *vm.Program, t build.TargetSpec) (bool, error) {
	out, err := expr.Run(program, t)
	if err != nil {
		return false, ErrExpr.Wrap(err).With(slog.String("target", t.Name))
	}

	ok, _ := out.(bool)

	return ok, nil
}

// selectTargets keeps the named targets, or all if names is empty, that
// match. Unknown names are an error.
func selectTargets(
	targets []build.TargetSpec,
	names []string,
	match filter,
) ([]build.TargetSpec, error) {
	known := make([]string, len(targets))
	for i, t := range targets {
		known[i] = t.Name
	}

	for _, name := range names {
		if !slices.Contains(known, name) {
			return nil, build.UnknownName(build.ErrUnknownTarget, name, known)
		}
	}

	selected := make([]build.TargetSpec, 0, len(targets))

	for _, t := range targets {
		if len(names) > 0 && !slices.Contains(names, t.Name) {
			continue
		}

		ok, err := match(t)
		if err != nil {
			return nil, err
		}

		if ok {
			selected = append(selected, t)
		}
	}

	return selected, nil
}

// write encodes v as YAML or JSON.
func write(w io.Writer, format string, v any) error {
	opts := []yaml.EncodeOption{yaml.Indent(2), yaml.IndentSequence(true)}
	sentinel := ErrYAMLMarshal

	if format == "json" {
		opts = append(opts, yaml.JSON())
		sentinel = ErrJSONMarshal
	}

	data, err := yaml.MarshalWithOptions(v, opts...)
	if err != nil {
		return sentinel.Wrap(err)
	}

	if !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}

	if _, err := w.Write(data); err != nil {
		return ErrWrite.Wrap(err)
	}

	return nil
}
