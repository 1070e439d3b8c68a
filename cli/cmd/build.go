package cmd

import (
	"context"

	"github.com/craflin/mare-sub000/build"
)

// Targets holds the arguments shared by the commands that run rules.
type Targets struct {
	Platform           []string `help:"Platforms to build (default: first declared)."      placeholder:"NAME" short:"p"`
	Configuration      []string `help:"Configurations to build (default: first declared)." placeholder:"NAME" short:"c"`
	Jobs               int      `default:"0" help:"Commands to run at once (0: one per CPU)." short:"j"`
	IgnoreDependencies bool     `help:"Do not activate the targets a requested target depends on."`

	Args []string `arg:"" help:"Targets to build and key=value assignments." optional:"" placeholder:"TARGET|KEY=VALUE"`
}

func (t *Targets) run(ctx context.Context, mode build.Mode) error {
	names, keys := splitArgs(t.Args)

	b, err := load(ctx, keys)
	if err != nil {
		return err
	}

	req := build.Request{
		Platforms:      t.Platform,
		Configurations: t.Configuration,
		Targets:        names,
	}

	return b.Build(ctx, req,
		build.WithMode(mode),
		build.WithJobs(t.Jobs),
		build.WithIgnoreDependencies(t.IgnoreDependencies),
	)
}

// Build runs the commands of outdated rules.
type Build struct {
	Targets `embed:""`
}

// Run implements the build command.
func (c *Build) Run(ctx context.Context) error {
	return c.run(ctx, build.ModeBuild)
}

// Clean removes the outputs of the selected targets.
type Clean struct {
	Targets `embed:""`
}

// Run implements the clean command.
func (c *Clean) Run(ctx context.Context) error {
	return c.run(ctx, build.ModeClean)
}

// Rebuild removes the outputs of the selected targets and builds them again.
type Rebuild struct {
	Targets `embed:""`
}

// Run implements the rebuild command.
func (c *Rebuild) Run(ctx context.Context) error {
	return c.run(ctx, build.ModeRebuild)
}
