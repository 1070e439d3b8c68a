package engine

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/craflin/mare-sub000/lang"
	"github.com/craflin/mare-sub000/log"
)

// Engine evaluates a Marefile and navigates its resolved keys.
//
// Keys come from three layers. Built-in defaults and command-line keys are
// bound in a base namespace. The Marefile is evaluated in a child of the
// base, so its keys mask the defaults, and command-line keys are appended to
// it so that they mask the Marefile's own keys.
//
// Navigation uses a cursor: EnterKey and friends move it to a child
// namespace, LeaveKey moves it back to the parent, and PushKey and PopKey
// save and restore it.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	dir     string
	fsys    fs.FS
	logger  log.Logger
	onError func(error)

	base    *Namespace
	root    *Namespace
	current *Namespace
	stack   []*Namespace

	cmdline []lang.Statement
}

// Option configures an Engine.
type Option func(*Engine)

// WithDir sets the directory that file patterns and readfile paths are
// relative to. The default is the working directory.
func WithDir(dir string) Option {
	return func(e *Engine) { e.dir = dir }
}

// WithFileSystem makes file patterns, readfile and Load read from fsys
// instead of the operating system.
func WithFileSystem(fsys fs.FS) Option {
	return func(e *Engine) { e.fsys = fsys }
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithErrorHandler registers fn to receive parse and evaluation errors.
// Evaluation errors are not fatal; the failing substitution expands to
// nothing.
func WithErrorHandler(fn func(error)) Option {
	return func(e *Engine) { e.onError = fn }
}

// New returns an Engine with an empty base namespace.
func New(opts ...Option) *Engine {
	e := &Engine{dir: "."}

	for _, opt := range opts {
		opt(e)
	}

	if abs, err := filepath.Abs(e.dir); err == nil {
		e.dir = abs
	}

	e.base = newScope(e, nil)
	e.current = e.base

	return e
}

// Dir returns the directory paths are relative to.
func (e *Engine) Dir() string { return e.dir }

// LoadDefaults parses text and evaluates it into the base namespace.
func (e *Engine) LoadDefaults(ctx context.Context, name, text string) error {
	block, err := lang.ParseString(ctx, name, text, e.parseOptions()...)
	if err != nil {
		return err
	}

	e.exec(block, e.base)

	e.logger.DebugContext(ctx, "defaults loaded",
		slog.String("name", name),
		slog.Int("keys", len(e.base.order)))

	return nil
}

// AddCommandLineKey binds name to value so that it masks both the defaults
// and the Marefile. It must be called before Load.
func (e *Engine) AddCommandLineKey(name, value string) error {
	if e.root != nil {
		return ErrLoaded.With(slog.String("key", name))
	}

	stmt := lang.NewAssign(name, lang.NewString(value, false), lang.OpSet)

	e.cmdline = append(e.cmdline, stmt)
	e.exec(stmt, e.base)

	return nil
}

// Load parses the Marefile at path and makes its namespace the root. The
// cursor is moved to the root.
func (e *Engine) Load(ctx context.Context, path string) error {
	if e.root != nil {
		return ErrLoaded.With(slog.String("path", path))
	}

	opts := e.parseOptions()

	if e.fsys != nil {
		opts = append(opts, lang.WithReadFile(func(name string) ([]byte, error) {
			return fs.ReadFile(e.fsys, filepath.ToSlash(name))
		}))
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(e.dir, path)
	}

	block, err := lang.ParseFile(ctx, path, opts...)
	if err != nil {
		return err
	}

	e.setRoot(ctx, path, block)

	return nil
}

// LoadString parses text as the Marefile named name.
func (e *Engine) LoadString(ctx context.Context, name, text string) error {
	if e.root != nil {
		return ErrLoaded.With(slog.String("path", name))
	}

	block, err := lang.ParseString(ctx, name, text, e.parseOptions()...)
	if err != nil {
		return err
	}

	e.setRoot(ctx, name, block)

	return nil
}

func (e *Engine) parseOptions() []lang.Option {
	return []lang.Option{
		lang.WithLogger(e.logger),
		lang.WithErrorHandler(e.onError),
	}
}

func (e *Engine) setRoot(ctx context.Context, path string, block *lang.Block) {
	stmts := append(block.Statements[:len(block.Statements):len(block.Statements)], e.cmdline...)

	e.root = newNamespace(e, e.base, &script{stmt: lang.NewBlock(stmts...)})
	e.current = e.root
	e.stack = e.stack[:0]

	e.logger.DebugContext(ctx, "marefile loaded",
		slog.String("path", path),
		slog.Int("statements", len(block.Statements)),
		slog.Int("command_line_keys", len(e.cmdline)))
}

// Loaded reports whether a Marefile has been loaded.
func (e *Engine) Loaded() bool { return e.root != nil }

// Current returns the namespace at the cursor.
func (e *Engine) Current() *Namespace { return e.current }

// EnterKey moves the cursor to key name of the current namespace, resolving
// it through the enclosing namespaces if allowInheritance is set. It
// reports false, leaving the cursor in place, if name is not bound.
func (e *Engine) EnterKey(name string, allowInheritance bool) bool {
	ns := e.current.EnterKey(name, allowInheritance)
	if ns == nil {
		return false
	}

	e.current = ns

	return true
}

// EnterUnnamedKey moves the cursor to a new empty child of the current
// namespace, replacing the previous unnamed child.
func (e *Engine) EnterUnnamedKey() {
	e.current = e.current.EnterUnnamedKey()
}

// EnterDefaultKey moves the cursor to key name of the current namespace,
// creating it empty if it is not bound.
func (e *Engine) EnterDefaultKey(name string) {
	e.current = e.current.EnterDefaultKey(name)
}

// EnterRootKey moves the cursor to the Marefile's namespace, or to the base
// namespace if none is loaded.
func (e *Engine) EnterRootKey() {
	if e.root != nil {
		e.current = e.root

		return
	}

	e.current = e.base
}

// LeaveKey moves the cursor to the parent of the current namespace. It
// reports false at the outermost namespace.
func (e *Engine) LeaveKey() bool {
	if e.current.parent == nil {
		return false
	}

	e.current = e.current.parent

	return true
}

// PushKey saves the cursor.
func (e *Engine) PushKey() {
	e.stack = append(e.stack, e.current)
}

// PopKey restores the cursor saved by the matching PushKey. It reports false
// if nothing was saved.
func (e *Engine) PopKey() bool {
	if len(e.stack) == 0 {
		return false
	}

	e.current = e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]

	return true
}

// Keys returns the keys of the current namespace in insertion order.
func (e *Engine) Keys() []string { return e.current.Keys() }

// FirstKey returns the first key of the current namespace.
func (e *Engine) FirstKey() string { return e.current.FirstKey() }

// Text returns the keys of the current namespace joined with spaces.
func (e *Engine) Text() string { return e.current.Text() }

// AddDefaultKey binds name to value in the current namespace unless it is
// already bound there.
func (e *Engine) AddDefaultKey(name, value string) {
	e.current.AddDefaultKey(name, value)
}

// report forwards a non-fatal evaluation error.
func (e *Engine) report(err error) {
	e.logger.Warn("evaluation", slog.Any("error", err))

	if e.onError != nil {
		e.onError(err)
	}
}

// glob expands a file pattern relative to the engine directory.
func (e *Engine) glob(pattern string) []string {
	if e.fsys != nil {
		matches, err := expandGlob(e.fsys, filepath.ToSlash(pattern))
		if err != nil {
			e.report(err)
		}

		return matches
	}

	abs := pattern
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(e.dir, abs)
	}

	vol := filepath.VolumeName(abs)
	root := vol + string(filepath.Separator)
	rel := filepath.ToSlash(strings.TrimPrefix(abs, root))

	matches, err := expandGlob(os.DirFS(root), rel)
	if err != nil {
		e.report(err)

		return nil
	}

	for i, m := range matches {
		full := filepath.Join(root, filepath.FromSlash(m))

		if !filepath.IsAbs(pattern) {
			if r, err := filepath.Rel(e.dir, full); err == nil {
				full = r
			}
		}

		matches[i] = filepath.ToSlash(full)
	}

	return matches
}
