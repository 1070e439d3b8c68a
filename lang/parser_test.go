package lang

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ignorePos compares statement trees without their source positions.
var ignorePos = cmpopts.IgnoreUnexported(
	Block{}, Assign{}, Remove{}, Binary{}, Unary{},
	StringLiteral{}, Reference{}, Conditional{},
)

func str(text string) *StringLiteral    { return &StringLiteral{Text: text} }
func quoted(text string) *StringLiteral { return &StringLiteral{Text: text, Quoted: true} }
func ref(name string) *Reference        { return &Reference{Name: name} }

func TestParseString_Statements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Statement
	}{
		{
			name:  "bare keys with separators",
			input: "a, b; c",
			want: []Statement{
				&Assign{Name: str("a")},
				&Assign{Name: str("b")},
				&Assign{Name: str("c")},
			},
		},
		{
			name:  "assignment operators",
			input: `a = "x" b += c d -= "y"`,
			want: []Statement{
				&Assign{Name: str("a"), Value: quoted("x")},
				&Assign{Name: str("b"), Value: ref("c"), Op: OpAppend},
				&Assign{Name: str("d"), Value: quoted("y"), Op: OpRemove},
			},
		},
		{
			name:  "remove",
			input: `-a - "b c"`,
			want: []Statement{
				&Remove{Name: str("a")},
				&Remove{Name: quoted("b c")},
			},
		},
		{
			name:  "nested block",
			input: `targets = { app = { files = "a.c" } }`,
			want: []Statement{
				&Assign{Name: str("targets"), Value: &Block{Statements: []Statement{
					&Assign{Name: str("app"), Value: &Block{Statements: []Statement{
						&Assign{Name: str("files"), Value: quoted("a.c")},
					}}},
				}}},
			},
		},
		{
			name:  "true false and substitution",
			input: `a = true b = false c = $(d)`,
			want: []Statement{
				&Assign{Name: str("a"), Value: quoted("true")},
				&Assign{Name: str("b"), Value: &StringLiteral{}},
				&Assign{Name: str("c"), Value: str("$(d)")},
			},
		},
		{
			name:  "if else",
			input: `if a == "x" { b } else c = "y"`,
			want: []Statement{
				&Conditional{
					Cond: &Binary{Op: OpEqual, Left: ref("a"), Right: quoted("x")},
					Then: &Block{Statements: []Statement{&Assign{Name: str("b")}}},
					Else: &Assign{Name: str("c"), Value: quoted("y")},
				},
			},
		},
		{
			name:  "ternary",
			input: `a = b ? "1" : "2"`,
			want: []Statement{
				&Assign{Name: str("a"), Value: &Conditional{
					Cond: ref("b"),
					Then: quoted("1"),
					Else: quoted("2"),
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, err := ParseString(context.Background(), "test.mare", tt.input)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, block.Statements, ignorePos); diff != "" {
				t.Errorf("statements mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseString_Precedence(t *testing.T) {
	// a || b && c == d < e + f - g
	want := &Binary{Op: OpOr,
		Left: ref("a"),
		Right: &Binary{Op: OpAnd,
			Left: ref("b"),
			Right: &Binary{Op: OpEqual,
				Left: ref("c"),
				Right: &Binary{Op: OpLess,
					Left: ref("d"),
					Right: &Binary{Op: OpSubtract,
						Left:  &Binary{Op: OpConcat, Left: ref("e"), Right: ref("f")},
						Right: ref("g"),
					},
				},
			},
		},
	}

	block, err := ParseString(context.Background(), "test.mare",
		"x = a || b && c == d < e + f - g")
	require.NoError(t, err)
	require.Len(t, block.Statements, 1)

	assign, ok := block.Statements[0].(*Assign)
	require.True(t, ok)

	if diff := cmp.Diff(Statement(want), assign.Value, ignorePos); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseString_NotAndParens(t *testing.T) {
	block, err := ParseString(context.Background(), "test.mare",
		`if !(a || b) c`)
	require.NoError(t, err)

	want := []Statement{&Conditional{
		Cond: &Unary{Operand: &Binary{Op: OpOr, Left: ref("a"), Right: ref("b")}},
		Then: &Assign{Name: str("c")},
	}}

	if diff := cmp.Diff(want, block.Statements, ignorePos); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}
}

func TestParseString_Positions(t *testing.T) {
	block, err := ParseString(context.Background(), "dir/Marefile",
		"a = \"x\"\n\nb = {\n  c\n}")
	require.NoError(t, err)
	require.Len(t, block.Statements, 2)

	assert.Equal(t, Position{File: "dir/Marefile", Line: 1}, block.Statements[0].Position())
	assert.Equal(t, Position{File: "dir/Marefile", Line: 3}, block.Statements[1].Position())

	inner := block.Statements[1].(*Assign).Value.(*Block)
	assert.Equal(t, 4, inner.Statements[0].Position().Line)
}

func TestParseString_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Error
		line  int
	}{
		{name: "missing value", input: "a =", want: ErrUnexpectedToken, line: 1},
		{name: "unclosed block", input: "a = {\n b", want: ErrUnexpectedToken, line: 2},
		{name: "stray operator", input: "a\n== b", want: ErrUnexpectedToken, line: 2},
		{name: "missing colon", input: `a = b ? "x"`, want: ErrUnexpectedToken, line: 1},
		{name: "bad character", input: "a = b |c", want: ErrUnexpectedChar, line: 1},
		{name: "unterminated comment", input: "a /* x", want: ErrSyntax, line: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reported []error

			_, err := ParseString(context.Background(), "test.mare", tt.input,
				WithErrorHandler(func(err error) { reported = append(reported, err) }))
			require.ErrorIs(t, err, tt.want)

			var le *Error
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.line, le.Position().Line)
			assert.Equal(t, "test.mare", le.Position().File)

			require.Len(t, reported, 1)
			assert.Equal(t, err, reported[0])
		})
	}
}

func TestParseFile_Include(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Marefile"),
		[]byte("a\ninclude \"sub/common.mare\"\nd"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "common.mare"),
		[]byte("b, c"), 0o644))

	block, err := ParseFile(context.Background(), filepath.Join(dir, "Marefile"))
	require.NoError(t, err)

	want := []Statement{
		&Assign{Name: str("a")},
		&Assign{Name: str("b")},
		&Assign{Name: str("c")},
		&Assign{Name: str("d")},
	}

	if diff := cmp.Diff(want, block.Statements, ignorePos); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, filepath.Join(dir, "sub", "common.mare"),
		block.Statements[1].Position().File)
}

func TestParseFile_IncludeErrors(t *testing.T) {
	dir := t.TempDir()

	write := func(name, text string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

		return path
	}

	t.Run("cycle", func(t *testing.T) {
		path := write("a.mare", `include "b.mare"`)
		write("b.mare", "x\ninclude \"a.mare\"")

		_, err := ParseFile(context.Background(), path)
		require.ErrorIs(t, err, ErrIncludeCycle)

		var le *Error
		require.True(t, errors.As(err, &le))
		assert.Equal(t, Position{File: filepath.Join(dir, "b.mare"), Line: 2}, le.Position())
	})

	t.Run("missing file", func(t *testing.T) {
		path := write("c.mare", "\ninclude missing.mare")

		_, err := ParseFile(context.Background(), path)
		require.ErrorIs(t, err, ErrReadFile)

		var le *Error
		require.True(t, errors.As(err, &le))
		assert.Equal(t, 2, le.Position().Line)
	})

	t.Run("syntax error in include", func(t *testing.T) {
		path := write("d.mare", `include "e.mare"`)
		write("e.mare", "a = =")

		var reported int

		_, err := ParseFile(context.Background(), path,
			WithErrorHandler(func(error) { reported++ }))
		require.ErrorIs(t, err, ErrUnexpectedToken)
		assert.Equal(t, 1, reported)

		var le *Error
		require.True(t, errors.As(err, &le))
		assert.Equal(t, filepath.Join(dir, "e.mare"), le.Position().File)
	})

	t.Run("unreadable top-level file", func(t *testing.T) {
		_, err := ParseFile(context.Background(), filepath.Join(dir, "nope"))
		require.ErrorIs(t, err, ErrReadFile)
	})
}
