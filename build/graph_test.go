package build

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craflin/mare-sub000/log"
)

func active(rs *RuleSet) []string {
	var names []string
	for _, t := range rs.active {
		names = append(names, t.Name)
	}

	return names
}

func TestRuleSet_Activate(t *testing.T) {
	lib := app("liblib.a", fileRule("l.c", "l.o"))
	lib.Name = "lib"

	main := app("app", fileRule("a.c", "a.o"))
	main.Dependencies = []string{"lib"}

	tool := app("tool")

	specs := []TargetSpec{lib, main, tool}

	tests := []struct {
		name    string
		targets []string
		ignore  bool
		want    []string
		rules   int
	}{
		{"all", nil, false, []string{"lib", "app", "tool"}, 5},
		{"with dependencies", []string{"app"}, false, []string{"app", "lib"}, 4},
		{"ignore dependencies", []string{"app"}, true, []string{"app"}, 2},
		{"both requested", []string{"app", "lib"}, true, []string{"app", "lib"}, 4},
		{"single", []string{"tool"}, false, []string{"tool"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := NewRuleSet(specs, WithIgnoreDependencies(tt.ignore))
			require.NoError(t, rs.Activate(tt.targets...))

			assert.Equal(t, tt.want, active(rs))
			assert.Equal(t, tt.rules, rs.ActiveRules())
		})
	}
}

func TestRuleSet_DependencyNames(t *testing.T) {
	lib := app("liblib.a")
	lib.Name = "lib"

	main := app("app")
	main.Dependencies = []string{"lib"}

	rs := NewRuleSet([]TargetSpec{lib, main})
	require.NoError(t, rs.Activate("app"))

	final := rs.Target("app").Final
	assert.Equal(t, []string{"liblib.a"}, final.Input)
	require.Len(t, final.deps, 1)
	assert.Same(t, rs.Target("lib").Final, final.deps[0])
	assert.Equal(t, 1, final.pending)

	// The TargetSpec passed in is not modified.
	assert.Empty(t, main.Input)
}

func TestRuleSet_DependencyWithoutOutputs(t *testing.T) {
	gen := TargetSpec{RuleSpec: RuleSpec{Name: "gen", Command: []string{"touch gen.h"}}}

	main := app("app", fileRule("main.c", "main.o"))
	main.Dependencies = []string{"gen"}

	tests := []struct {
		name    string
		targets []string
		ignore  bool
		active  []string
		linked  bool
	}{
		{"activates dependency", []string{"app"}, false, []string{"app", "gen"}, true},
		{"ignore dependencies", []string{"app"}, true, []string{"app"}, false},
		{"ignore with both requested", []string{"app", "gen"}, true, []string{"app", "gen"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := newMemFS("main.c")

			sp, rs, err := run(t, fsys, []TargetSpec{main, gen}, tt.targets,
				WithJobs(1), WithIgnoreDependencies(tt.ignore))
			require.NoError(t, err)

			assert.Equal(t, tt.active, active(rs))

			final := rs.Target("app").Final
			ran := sp.commands()

			if !tt.linked {
				assert.NotContains(t, final.deps, rs.Target("gen").Final)
				assert.NotContains(t, ran, "touch gen.h")

				return
			}

			assert.Contains(t, final.deps, rs.Target("gen").Final)
			assert.Less(t, index(t, ran, "touch gen.h"), index(t, ran, "touch app"))
		})
	}
}

func TestRuleSet_DependencyWithShadowedOutput(t *testing.T) {
	// tool declares lib.a first and keeps it; app still depends on lib.
	tool := app("tool")
	tool.Command = []string{"touch lib.a"}
	tool.Output = []string{"lib.a"}

	lib := app("lib", fileRule("l.c", "l.o"))
	lib.Command = []string{"touch lib.a lib.stamp"}
	lib.Output = []string{"lib.a"}

	main := app("app", fileRule("a.c", "a.o"))
	main.Dependencies = []string{"lib"}

	tests := []struct {
		name    string
		targets []string
		ignore  bool
	}{
		{"activates dependency", []string{"app"}, false},
		{"ignore with both requested", []string{"app", "lib"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := newMemFS("a.c", "l.c")

			sp, rs, err := run(t, fsys, []TargetSpec{tool, lib, main}, tt.targets,
				WithJobs(1), WithIgnoreDependencies(tt.ignore))
			require.NoError(t, err)

			assert.Contains(t, active(rs), "lib")
			assert.Contains(t, rs.Target("app").Final.deps, rs.Target("lib").Final)

			ran := sp.commands()
			assert.Less(t, index(t, ran, "touch lib.a lib.stamp"), index(t, ran, "touch app"))

			if tt.ignore {
				assert.NotContains(t, active(rs), "tool")
			}
		})
	}
}

func TestRuleSet_Warnings(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithLevel(log.LevelWarn), log.WithFormat(log.FormatText))

	first := app("app", fileRule("a.c", "a.o"))
	second := app("other", fileRule("b.c", "a.o"))
	second.Dependencies = []string{"nosuch"}

	rs := NewRuleSet([]TargetSpec{first, second}, WithLogger(logger))
	require.NoError(t, rs.Activate())

	out := buf.String()
	assert.Contains(t, out, "output declared by more than one rule")
	assert.Contains(t, out, "unknown dependency")
	assert.Contains(t, out, "nosuch")

	// The first rule keeps the output.
	assert.Same(t, rs.Target("app").Rules[0], rs.outputs["a.o"])
}

func TestRuleSet_SelfInput(t *testing.T) {
	rule := RuleSpec{
		Name:    "gen",
		Command: []string{"touch gen.h"},
		Input:   []string{"gen.h"},
		Output:  []string{"gen.h"},
	}

	rs := NewRuleSet([]TargetSpec{{RuleSpec: rule}})
	require.NoError(t, rs.Activate())

	assert.Empty(t, rs.Target("gen").Final.deps)
}

func TestRuleSet_UnknownTarget(t *testing.T) {
	rs := NewRuleSet([]TargetSpec{app("app"), app("tests")})

	err := rs.Activate("app", "tset")
	require.ErrorIs(t, err, ErrUnknownTarget)
	assert.Contains(t, err.Error(), `"tset"`)
	assert.Contains(t, err.Error(), `did you mean "tests"?`)
	assert.Empty(t, active(rs))
}

func TestSuggest(t *testing.T) {
	known := []string{"Debug", "Release", "Profile"}

	tests := []struct {
		name string
		want string
	}{
		{"Rel", "Release"},
		{"Relase", "Release"},
		{"debug", "Debug"},
		{"Debugging", "Debug"},
		{"xyz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, suggest(tt.name, known))
		})
	}
}

func TestUnknownName(t *testing.T) {
	err := UnknownName(ErrUnknownPlatform, "Wind", []string{"Linux", "Win32"})

	assert.ErrorIs(t, err, ErrUnknownPlatform)
	assert.NotErrorIs(t, err, ErrUnknownTarget)
	assert.True(t, strings.HasPrefix(err.Error(), "unknown platform: "))
	assert.Contains(t, err.Error(), `did you mean "Win32"?`)
}
