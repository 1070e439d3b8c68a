package engine

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// expand evaluates the $(...) substitutions of text with names resolved
// from scope.
//
// A substitution is either a variable, $(name), or a function call,
// $(fn arg,arg,...). Variables expand to the words of the named key,
// resolved with inheritance.
func (e *Engine) expand(text string, scope *Namespace) string {
	if !strings.Contains(text, "$(") {
		return text
	}

	in := &interp{engine: e, text: text}

	return in.run(scope, "", false)
}

// interp is a cursor over substitution text. Function arguments are
// evaluated while the cursor advances; an argument that must not be
// evaluated is skipped with the same scan so that the cursor stays aligned.
type interp struct {
	engine *Engine
	text   string
	pos    int
}

// run evaluates text up to the first byte of stop outside parentheses, or
// to the end of text. With skip set nothing is evaluated.
func (in *interp) run(scope *Namespace, stop string, skip bool) string {
	var (
		sb    strings.Builder
		depth int
	)

	for in.pos < len(in.text) {
		ch := in.text[in.pos]

		if depth == 0 && strings.IndexByte(stop, ch) >= 0 {
			break
		}

		switch {
		case strings.HasPrefix(in.text[in.pos:], "$("):
			in.pos += 2
			sb.WriteString(in.substitute(scope, skip))

			continue

		case ch == '(':
			depth++
		case ch == ')':
			depth--
		}

		if !skip {
			sb.WriteByte(ch)
		}

		in.pos++
	}

	return sb.String()
}

// substitute evaluates one substitution after its opening "$(" through its
// closing ")".
func (in *interp) substitute(scope *Namespace, skip bool) string {
	name := in.run(scope, " )", skip)

	if in.peek() != ' ' {
		in.pos++ // ')'

		if skip {
			return ""
		}

		return in.variable(scope, name)
	}

	in.pos++ // ' '

	fn, ok := functions[name]
	if !ok {
		if !skip {
			in.engine.report(ErrUnknownFunction.With(slog.String("function", name)))
		}

		in.rest(scope)

		return ""
	}

	result := fn(in, scope, skip)

	in.rest(scope)

	if skip {
		return ""
	}

	return result
}

// arg evaluates the next argument. It reports false once the closing ")"
// has been reached.
func (in *interp) arg(scope *Namespace, skip bool) (string, bool) {
	if in.pos >= len(in.text) || in.text[in.pos] == ')' {
		return "", false
	}

	s := in.run(scope, ",)", skip)

	if in.peek() == ',' {
		in.pos++
	}

	return s, true
}

// args evaluates up to n arguments.
func (in *interp) args(scope *Namespace, skip bool, n int) []string {
	out := make([]string, n)

	for i := range n {
		s, ok := in.arg(scope, skip)
		if !ok {
			break
		}

		out[i] = s
	}

	return out
}

// rest skips any remaining arguments and the closing ")".
func (in *interp) rest(scope *Namespace) {
	for {
		if _, ok := in.arg(scope, true); !ok {
			break
		}
	}

	if in.pos < len(in.text) {
		in.pos++
	}
}

func (in *interp) peek() byte {
	if in.pos >= len(in.text) {
		return 0
	}

	return in.text[in.pos]
}

func (in *interp) variable(scope *Namespace, name string) string {
	if scope == nil {
		return ""
	}

	ns := scope.EnterKey(name, true)
	if ns == nil {
		return ""
	}

	return ns.Text()
}

// function evaluates its arguments from the cursor and returns its result.
// The cursor is left before any unused arguments.
type function func(in *interp, scope *Namespace, skip bool) string

var functions map[string]function

func init() {
	functions = map[string]function{
		"patsubst":   patsubst,
		"subst":      subst,
		"firstword":  firstword,
		"filter":     filter(true),
		"filter-out": filter(false),
		"foreach":    foreach,
		"readfile":   readfile,
		"if":         ifFunc,
	}
}

// patsubst replaces every word of text that matches pattern with
// replacement, substituting the text matched by '%'.
func patsubst(in *interp, scope *Namespace, skip bool) string {
	a := in.args(scope, skip, 3)
	if skip {
		return ""
	}

	words := SplitWords(a[2])
	for i, w := range words {
		if stem, ok := matchPattern(a[0], w); ok {
			words[i] = replacePattern(a[1], stem)
		}
	}

	return JoinWords(words)
}

// subst replaces occurrences of from in text with to, scanning forward once
// so that replaced text is never rescanned.
func subst(in *interp, scope *Namespace, skip bool) string {
	a := in.args(scope, skip, 3)
	if skip {
		return ""
	}

	from, to, text := a[0], a[1], a[2]
	if from == "" {
		return text
	}

	var sb strings.Builder

	for {
		i := strings.Index(text, from)
		if i < 0 {
			sb.WriteString(text)

			return sb.String()
		}

		sb.WriteString(text[:i])
		sb.WriteString(to)

		text = text[i+len(from):]
	}
}

func firstword(in *interp, scope *Namespace, skip bool) string {
	a := in.args(scope, skip, 1)

	words := SplitWords(a[0])
	if len(words) == 0 {
		return ""
	}

	return JoinWords(words[:1])
}

// filter keeps (or with keep unset, drops) the words of text that match
// any of the space-separated patterns.
func filter(keep bool) function {
	return func(in *interp, scope *Namespace, skip bool) string {
		a := in.args(scope, skip, 2)
		if skip {
			return ""
		}

		patterns := SplitWords(a[0])

		var out []string

		for _, w := range SplitWords(a[1]) {
			matched := false

			for _, p := range patterns {
				if _, ok := matchPattern(p, w); ok {
					matched = true

					break
				}
			}

			if matched == keep {
				out = append(out, w)
			}
		}

		return JoinWords(out)
	}
}

// foreach evaluates body once per word of list with var bound to the word
// in a fresh scope, and joins the results with spaces.
func foreach(in *interp, scope *Namespace, skip bool) string {
	a := in.args(scope, skip, 2)
	if scope == nil {
		skip = true
	}

	start := in.pos

	if skip {
		in.arg(scope, true)

		return ""
	}

	name := strings.TrimSpace(a[0])

	var results []string

	for _, w := range SplitWords(a[1]) {
		in.pos = start

		iter := newScope(in.engine, scope)
		iter.AddDefaultKey(name, w)

		s, _ := in.arg(iter, false)
		if s != "" {
			results = append(results, s)
		}
	}

	if in.pos == start {
		in.arg(scope, true)
	}

	return strings.Join(results, " ")
}

// readfile returns the contents of a file.
func readfile(in *interp, scope *Namespace, skip bool) string {
	a := in.args(scope, skip, 1)
	if skip {
		return ""
	}

	data, err := in.engine.readFile(strings.TrimSpace(a[0]))
	if err != nil {
		in.engine.report(ErrReadFile.Wrap(err).With(slog.String("path", a[0])))

		return ""
	}

	return string(data)
}

// ifFunc evaluates then when cond is true and else otherwise. The branch
// not taken is skipped without evaluation.
func ifFunc(in *interp, scope *Namespace, skip bool) string {
	cond, _ := in.arg(scope, skip)
	take := !skip && truthy(strings.TrimSpace(cond))

	then, _ := in.arg(scope, skip || !take)
	els, _ := in.arg(scope, skip || take)

	if take {
		return then
	}

	return els
}

func (e *Engine) readFile(path string) ([]byte, error) {
	if e.fsys != nil {
		return fs.ReadFile(e.fsys, filepath.ToSlash(path))
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(e.dir, path)
	}

	return os.ReadFile(path)
}
