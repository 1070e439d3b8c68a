package build

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craflin/mare-sub000/engine"
)

const projectMarefile = `
targets = {
  app = cApplication + {
    files = { "src/*.c" = cSource }
    dependencies = { lib }
    libs = { m }
  }
  lib = staticLibrary + {
    files = { "lib/*.c" = cSource }
    includePaths = { include }
  }
}
`

func loadProject(t *testing.T, marefile string, keys ...Key) *Builder {
	t.Helper()

	fsys := fstest.MapFS{
		"Marefile":   {Data: []byte(marefile)},
		"src/main.c": {Data: []byte("int main() {}")},
		"lib/util.c": {Data: []byte("int util;")},
		"lib/io.c":   {Data: []byte("int io;")},
	}

	var errs []error

	e := engine.New(
		engine.WithFileSystem(fsys),
		engine.WithErrorHandler(func(err error) { errs = append(errs, err) }),
	)

	b := NewBuilder(e)
	require.NoError(t, b.Load(context.Background(), "Marefile", keys...))

	t.Cleanup(func() { assert.Empty(t, errs) })

	return b
}

func TestBuilder_Defaults(t *testing.T) {
	b := loadProject(t, projectMarefile)

	assert.Equal(t, []string{Host()}, b.Platforms())
	assert.Equal(t, []string{"Debug", "Release"}, b.Configurations(Host()))
}

func TestBuilder_Resolve(t *testing.T) {
	b := loadProject(t, projectMarefile)

	cfg, err := b.Resolve("Linux", "Release")
	require.NoError(t, err)

	require.Len(t, cfg.Targets, 2)

	app, lib := cfg.Targets[0], cfg.Targets[1]

	want := RuleSpec{
		Name:         "app",
		Message:      []string{"Linking app..."},
		Input:        []string{"build/Release/src/main.o"},
		Output:       []string{"build/Release/app"},
		Dependencies: []string{"lib"},
	}

	got := app.RuleSpec
	got.Command = nil

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("app (-want +got):\n%s", diff)
	}

	require.Len(t, app.RuleSpec.Command, 1)
	assert.Equal(t,
		"gcc -o build/Release/app build/Release/src/main.o -lm",
		strings.Join(strings.Fields(app.RuleSpec.Command[0]), " "))

	require.Len(t, lib.Files, 2)

	io := lib.Files[0]
	assert.Equal(t, "lib/io.c", io.Name)
	assert.Equal(t, []string{"lib/io.c"}, io.Input)
	assert.Equal(t, []string{"build/Release/lib/io.o"}, io.Output)
	assert.Equal(t, []string{"lib/io.c"}, io.Message)
	assert.Equal(t,
		"gcc -c -O2 -DNDEBUG -Iinclude -o build/Release/lib/io.o lib/io.c",
		strings.Join(strings.Fields(io.Command[0]), " "))

	assert.Equal(t, []string{"build/Release/liblib.a"}, lib.Output)
	assert.Equal(t,
		[]string{"build/Release/lib/io.o", "build/Release/lib/util.o"},
		lib.Input)
}

func TestBuilder_ResolveDebug(t *testing.T) {
	b := loadProject(t, projectMarefile)

	cfg, err := b.Resolve("Linux", "Debug")
	require.NoError(t, err)

	main := cfg.Targets[0].Files[0]
	assert.Equal(t,
		"gcc -c -g -o build/Debug/src/main.o src/main.c",
		strings.Join(strings.Fields(main.Command[0]), " "))
}

func TestBuilder_CommandLineKeys(t *testing.T) {
	b := loadProject(t, projectMarefile, Key{Name: "CC", Value: "clang"})

	cfg, err := b.Resolve("Linux", "Debug")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(cfg.Targets[0].Files[0].Command[0], "clang "))
}

func TestBuilder_Conditions(t *testing.T) {
	b := loadProject(t, `
platforms = { Linux, Win32 }
targets = {
  app = {
    if platform == "Win32" {
      output = "app.exe"
    } else {
      output = "app"
    }
  }
}
`)

	assert.Equal(t, []string{"Linux", "Win32"}, b.Platforms())

	linux, err := b.Resolve("Linux", "Debug")
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, linux.Targets[0].Output)

	win, err := b.Resolve("Win32", "Debug")
	require.NoError(t, err)
	assert.Equal(t, []string{"app.exe"}, win.Targets[0].Output)
}

func TestBuilder_NotLoaded(t *testing.T) {
	b := NewBuilder(engine.New())

	_, err := b.Resolve("Linux", "Debug")
	require.ErrorIs(t, err, engine.ErrNotLoaded)
}

func TestBuilder_NoMarefile(t *testing.T) {
	b := NewBuilder(engine.New(engine.WithDir(t.TempDir())))

	err := b.Load(context.Background(), "Marefile")
	require.ErrorIs(t, err, ErrNoMarefile)
}

func TestBuilder_UnknownNames(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		sentinel *Error
		suggest  string
	}{
		{
			"platform",
			Request{Platforms: []string{"Lin"}},
			ErrUnknownPlatform,
			Host(),
		},
		{
			"configuration",
			Request{Configurations: []string{"Relase"}},
			ErrUnknownConfiguration,
			"Release",
		},
		{
			"target",
			Request{Targets: []string{"ap"}},
			ErrUnknownTarget,
			"app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "platform" && Host() != "Linux" {
				t.Skip("suggestion depends on the host name")
			}

			b := loadProject(t, projectMarefile)
			sp := &fakeSpawner{fs: newMemFS()}

			err := b.Build(context.Background(), tt.req, WithSpawner(sp))
			require.ErrorIs(t, err, tt.sentinel)
			assert.Contains(t, err.Error(), `did you mean "`+tt.suggest+`"?`)
			assert.Empty(t, sp.commands())
		})
	}
}

func TestBuilder_BuildAllVariantsResolvedFirst(t *testing.T) {
	b := loadProject(t, projectMarefile)
	sp := &fakeSpawner{fs: newMemFS()}

	// The second configuration is unknown, so nothing runs at all.
	err := b.Build(context.Background(),
		Request{Configurations: []string{"Debug", "Nope"}},
		WithSpawner(sp), WithFileSystem(newMemFS()))
	require.ErrorIs(t, err, ErrUnknownConfiguration)
	assert.Empty(t, sp.commands())
}

func TestBuilder_Build(t *testing.T) {
	b := loadProject(t, projectMarefile)
	fsys := newMemFS("src/main.c", "lib/util.c", "lib/io.c")
	sp := &fakeSpawner{fs: fsys}

	err := b.Build(context.Background(),
		Request{Configurations: []string{"Debug", "Release"}, Targets: []string{"lib"}},
		WithSpawner(sp), WithFileSystem(fsys), WithJobs(2))
	require.NoError(t, err)

	// Two variants of two objects and an archive each.
	ran := sp.commands()
	assert.Len(t, ran, 6)

	for _, cmd := range ran {
		assert.NotContains(t, cmd, "src/main.c")
	}
}

// countingSpawner counts the commands started through it.
type countingSpawner struct {
	Spawner

	n int
}

func (s *countingSpawner) Spawn(ctx context.Context, command string) (Process, error) {
	s.n++

	return s.Spawner.Spawn(ctx, command)
}

func TestBuilder_Incremental(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("commands use a POSIX shell")
	}

	dir := t.TempDir()

	write := func(name, data string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644))
	}

	write("Marefile", `
targets = {
  app = {
    files = {
      "*.c" = {
        command = "cp $(file) $(output)"
        output = "obj/$(patsubst %.c,%.o,$(file))"
      }
    }
    input = $(foreach f,$(files),obj/$(patsubst %.c,%.o,$(f)))
    command = "cat $(input) > $(output)"
    output = "app.txt"
  }
}
`)
	write("a.c", "a\n")
	write("b.c", "b\n")

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "a.c"), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "b.c"), old, old))

	build := func() int {
		t.Helper()

		e := engine.New(engine.WithDir(dir))
		sp := &countingSpawner{Spawner: ShellSpawner{Dir: dir}}

		b := NewBuilder(e, WithSpawner(sp))
		require.NoError(t, b.Load(context.Background(), "Marefile"))
		require.NoError(t, b.Build(context.Background(), Request{}))

		return sp.n
	}

	assert.Equal(t, 3, build())

	data, err := os.ReadFile(filepath.Join(dir, "app.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(data))

	assert.Equal(t, 0, build())

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "a.c"), future, future))

	assert.Equal(t, 2, build())
}
