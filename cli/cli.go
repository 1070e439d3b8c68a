package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/craflin/mare-sub000/cli/cmd"
	"github.com/craflin/mare-sub000/pkg"
)

// CLI is the top-level command-line interface for mare.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version   kong.VersionFlag `help:"Print version and exit."`
	Directory string           `default:"."        help:"Change to directory before doing anything." placeholder:"DIR"  short:"C" type:"existingdir"`
	File      string           `default:"Marefile" help:"Marefile to load, relative to the directory." placeholder:"FILE" short:"f"`

	Build   cmd.Build   `cmd:"" default:"withargs" help:"Build outdated targets"`
	Clean   cmd.Clean   `cmd:""                   help:"Remove the outputs of targets"`
	Rebuild cmd.Rebuild `cmd:""                   help:"Remove the outputs of targets and build them"`
	Query   cmd.Query   `cmd:""                   help:"Print resolved targets"`
}

// Run executes the mare CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		"version": pkg.Name + " " + pkg.Version(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before parsing so that parse errors are
	// already formatted as requested.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithProject(ctx, cmd.Project{Dir: cli.Directory, File: cli.File})

	cli.Log.start(ctx)

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
