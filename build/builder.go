package build

import (
	"context"
	_ "embed"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"slices"

	"github.com/craflin/mare-sub000/engine"
	"github.com/craflin/mare-sub000/log"
)

//go:embed defaults.mare
var defaults string

// Key is a key bound on the command line.
type Key struct {
	Name  string
	Value string
}

// Request selects the rule sets a build visits. Empty lists select the
// first platform, the first configuration and every target.
type Request struct {
	Platforms      []string
	Configurations []string
	Targets        []string
}

// Builder resolves a Marefile into rule sets and runs them.
type Builder struct {
	engine *engine.Engine
	opts   []Option
	logger log.Logger
}

// NewBuilder returns a Builder reading from e. Commands run in the engine
// directory unless opts say otherwise.
func NewBuilder(e *engine.Engine, opts ...Option) *Builder {
	base := []Option{
		WithFileSystem(OSFileSystem{Dir: e.Dir()}),
		WithSpawner(ShellSpawner{Dir: e.Dir(), Stdout: os.Stdout, Stderr: os.Stderr}),
		WithOutput(os.Stdout),
	}

	opts = append(base, opts...)

	return &Builder{
		engine: e,
		opts:   opts,
		logger: makeConfig(opts...).logger,
	}
}

// Engine returns the engine the Builder reads from.
func (b *Builder) Engine() *engine.Engine { return b.engine }

// Host returns the name of the platform mare runs on.
func Host() string {
	switch runtime.GOOS {
	case "linux":
		return "Linux"
	case "darwin":
		return "MacOSX"
	case "windows":
		return "Win32"
	default:
		return runtime.GOOS
	}
}

// Load binds the built-in keys and the command-line keys, then loads the
// Marefile at path.
func (b *Builder) Load(ctx context.Context, path string, keys ...Key) error {
	e := b.engine

	if err := e.LoadDefaults(ctx, "defaults.mare", defaults); err != nil {
		return err
	}

	e.EnterRootKey()
	e.AddDefaultKey("host", Host())
	e.AddDefaultKey("tool", "mare")

	for _, k := range keys {
		if err := e.AddCommandLineKey(k.Name, k.Value); err != nil {
			return err
		}
	}

	if err := e.Load(ctx, path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNoMarefile.Wrap(err).With(slog.String("path", path))
		}

		return err
	}

	return nil
}

// Platforms returns the platforms the Marefile declares.
func (b *Builder) Platforms() []string {
	e := b.engine

	e.PushKey()
	defer e.PopKey()

	e.EnterRootKey()

	if !e.EnterKey("platforms", true) {
		return nil
	}

	return e.Keys()
}

// Configurations returns the configurations the Marefile declares for
// platform.
func (b *Builder) Configurations(platform string) []string {
	e := b.engine

	e.PushKey()
	defer e.PopKey()

	e.EnterRootKey()
	e.EnterUnnamedKey()
	e.AddDefaultKey("platform", platform)

	if !e.EnterKey("configurations", true) {
		return nil
	}

	return e.Keys()
}

// Resolve evaluates the targets of one platform and configuration.
func (b *Builder) Resolve(platform, configuration string) (Configuration, error) {
	e := b.engine
	cfg := Configuration{Platform: platform, Configuration: configuration}

	if !e.Loaded() {
		return cfg, engine.ErrNotLoaded
	}

	e.PushKey()
	defer e.PopKey()

	e.EnterRootKey()
	e.EnterUnnamedKey()
	e.AddDefaultKey("platform", platform)
	e.EnterUnnamedKey()
	e.AddDefaultKey("configuration", configuration)

	if !e.EnterKey("targets", true) {
		return cfg, nil
	}

	for _, name := range e.Keys() {
		e.PushKey()

		if e.EnterKey(name, false) {
			e.AddDefaultKey("target", name)
			cfg.Targets = append(cfg.Targets, b.target(name))
		}

		e.PopKey()
	}

	return cfg, nil
}

// target reads the target at the cursor.
func (b *Builder) target(name string) TargetSpec {
	e := b.engine
	t := TargetSpec{RuleSpec: b.rule(name)}

	e.PushKey()
	defer e.PopKey()

	if !e.EnterKey("files", false) {
		return t
	}

	for _, file := range e.Keys() {
		if !e.EnterKey(file, false) {
			continue
		}

		e.AddDefaultKey("file", file)
		e.AddDefaultKey("input", file)
		t.Files = append(t.Files, b.rule(file))

		e.LeaveKey()
	}

	return t
}

// rule reads the rule keys at the cursor.
func (b *Builder) rule(name string) RuleSpec {
	return RuleSpec{
		Name:         name,
		Command:      b.values("command"),
		Message:      b.values("message"),
		Input:        b.values("input"),
		Output:       b.values("output"),
		Dependencies: b.values("dependencies"),
	}
}

func (b *Builder) values(key string) []string {
	e := b.engine

	e.PushKey()
	defer e.PopKey()

	if !e.EnterKey(key, false) {
		return nil
	}

	return e.Keys()
}

// Build resolves every requested platform and configuration, checks the
// requested names, and then runs the rule sets one after another. opts
// extend the options the Builder was created with.
func (b *Builder) Build(ctx context.Context, req Request, opts ...Option) error {
	opts = append(slices.Clip(b.opts), opts...)

	sets, err := b.ruleSets(req, opts)
	if err != nil {
		return err
	}

	scheduler := NewScheduler(opts...)

	for _, set := range sets {
		b.logger.InfoContext(ctx, scheduler.mode.String(),
			slog.String("platform", set.platform),
			slog.String("configuration", set.configuration),
			slog.Int("rules", set.ActiveRules()),
		)

		if err := scheduler.Run(ctx, set.RuleSet); err != nil {
			return err
		}
	}

	return nil
}

type ruleSet struct {
	*RuleSet

	platform      string
	configuration string
}

func (b *Builder) ruleSets(req Request, opts []Option) ([]ruleSet, error) {
	variants, err := b.Select(req)
	if err != nil {
		return nil, err
	}

	sets := make([]ruleSet, 0, len(variants))

	for _, v := range variants {
		cfg, err := b.Resolve(v.Platform, v.Configuration)
		if err != nil {
			return nil, err
		}

		rs := NewRuleSet(cfg.Targets, opts...)

		if err := rs.Activate(req.Targets...); err != nil {
			return nil, err
		}

		sets = append(sets, ruleSet{
			RuleSet:       rs,
			platform:      v.Platform,
			configuration: v.Configuration,
		})
	}

	return sets, nil
}

// Variant is a platform and configuration pair.
type Variant struct {
	Platform      string
	Configuration string
}

// Select returns the requested variants, checking each name. Empty lists
// select the first declared name.
func (b *Builder) Select(req Request) ([]Variant, error) {
	platforms, err := selectNames(ErrUnknownPlatform, req.Platforms, b.Platforms())
	if err != nil {
		return nil, err
	}

	var variants []Variant

	for _, p := range platforms {
		configurations, err := selectNames(
			ErrUnknownConfiguration, req.Configurations, b.Configurations(p))
		if err != nil {
			return nil, err
		}

		for _, c := range configurations {
			variants = append(variants, Variant{Platform: p, Configuration: c})
		}
	}

	return variants, nil
}

func selectNames(sentinel *Error, requested, known []string) ([]string, error) {
	if len(requested) == 0 {
		if len(known) == 0 {
			return nil, nil
		}

		return known[:1], nil
	}

	for _, name := range requested {
		if !slices.Contains(known, name) {
			return nil, UnknownName(sentinel, name, known)
		}
	}

	return requested, nil
}
