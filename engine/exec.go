package engine

import (
	"cmp"
	"strconv"
	"strings"

	"github.com/craflin/mare-sub000/lang"
)

// run executes s into n. While it runs, s is skipped by name resolution so
// that a binding referring to itself sees older bindings instead.
func (e *Engine) run(s *script, into *Namespace) {
	s.state = inProgress
	defer func() { s.state = done }()

	if s.scope != nil && s.scope != into {
		e.splice(s.scope, into)
	}

	for _, w := range s.literal {
		into.addKey(w)
	}

	if s.stmt != nil {
		e.exec(s.stmt, into)
	}
}

// splice copies the newest binding of every key of src into dst.
func (e *Engine) splice(src, dst *Namespace) {
	for _, name := range src.Keys() {
		child := src.keys[name]
		if len(child.scripts) == 0 {
			dst.addKey(name)

			continue
		}

		dst.bind(name, child.scripts[0])
	}
}

// resolveScript finds the newest binding of name visible from ns, walking
// the shadow chain of each scope before moving to its parent. Bindings that
// are running are skipped; skipped reports whether any were.
func (e *Engine) resolveScript(name string, ns *Namespace) (s *script, skipped bool) {
	for ; ns != nil; ns = ns.parent {
		ns.compile()

		child, ok := ns.keys[name]
		if !ok {
			continue
		}

		for _, s := range child.scripts {
			if s.state == inProgress {
				skipped = true

				continue
			}

			return s, skipped
		}
	}

	return nil, skipped
}

// exec executes stmt into the namespace into. Names are resolved starting at
// the parent of into, where the statement was written.
func (e *Engine) exec(stmt lang.Statement, into *Namespace) {
	scope := into.parent

	switch st := stmt.(type) {
	case *lang.Block:
		for _, child := range st.Statements {
			e.exec(child, into)
		}

	case *lang.Assign:
		for _, name := range e.words(st.Name, scope) {
			if st.Value == nil {
				into.addKey(name)

				continue
			}

			into.bind(name, &script{stmt: desugar(name, st)})
		}

	case *lang.Remove:
		for _, name := range e.words(st.Name, scope) {
			into.removeKey(name)
		}

	case *lang.StringLiteral:
		for _, w := range e.words(st, scope) {
			into.addKey(w)
		}

	case *lang.Reference:
		if s, _ := e.resolveScript(st.Name, scope); s != nil {
			e.run(s, into)
		}

	case *lang.Binary:
		switch {
		case st.Op == lang.OpConcat:
			e.exec(st.Left, into)
			e.exec(st.Right, into)

		case st.Op == lang.OpSubtract:
			e.exec(st.Left, into)

			tmp := newScope(e, scope)
			e.exec(st.Right, tmp)

			for _, name := range tmp.order {
				into.removeKey(name)
			}

		default:
			if e.test(st, scope) {
				into.addKey("true")
			}
		}

	case *lang.Unary:
		if e.test(st, scope) {
			into.addKey("true")
		}

	case *lang.Conditional:
		switch {
		case e.test(st.Cond, scope):
			e.exec(st.Then, into)
		case st.Else != nil:
			e.exec(st.Else, into)
		}
	}
}

// desugar rewrites "name += value" to "name = name + value" and
// "name -= value" to "name = name - value".
func desugar(name string, st *lang.Assign) lang.Statement {
	switch st.Op {
	case lang.OpAppend:
		return &lang.Binary{Op: lang.OpConcat, Left: lang.NewReference(name), Right: st.Value}
	case lang.OpRemove:
		return &lang.Binary{Op: lang.OpSubtract, Left: lang.NewReference(name), Right: st.Value}
	default:
		return st.Value
	}
}

// words evaluates a string literal into words: substitutions are expanded,
// unquoted text is split at whitespace and file patterns are expanded.
func (e *Engine) words(lit *lang.StringLiteral, scope *Namespace) []string {
	text := e.expand(lit.Text, scope)

	var words []string

	switch {
	case lit.Quoted && text != "":
		words = []string{text}
	case !lit.Quoted:
		words = SplitWords(text)
	}

	expanded := words[:0:0]

	for _, w := range words {
		if !hasWildcard(w) {
			expanded = append(expanded, w)

			continue
		}

		expanded = append(expanded, e.glob(w)...)
	}

	return expanded
}

// value executes stmt into a temporary namespace and returns its words joined.
func (e *Engine) value(stmt lang.Statement, scope *Namespace) string {
	tmp := newScope(e, scope)
	e.exec(stmt, tmp)

	return JoinWords(tmp.order)
}

// test evaluates stmt as a condition.
func (e *Engine) test(stmt lang.Statement, scope *Namespace) bool {
	switch st := stmt.(type) {
	case *lang.Unary:
		return !e.test(st.Operand, scope)

	case *lang.Binary:
		switch st.Op {
		case lang.OpOr:
			return e.test(st.Left, scope) || e.test(st.Right, scope)
		case lang.OpAnd:
			return e.test(st.Left, scope) && e.test(st.Right, scope)
		case lang.OpEqual:
			return e.value(st.Left, scope) == e.value(st.Right, scope)
		case lang.OpNotEqual:
			return e.value(st.Left, scope) != e.value(st.Right, scope)
		case lang.OpLess, lang.OpGreater, lang.OpLessEqual, lang.OpGreaterEqual:
			c := compare(e.value(st.Left, scope), e.value(st.Right, scope))

			switch st.Op {
			case lang.OpLess:
				return c < 0
			case lang.OpGreater:
				return c > 0
			case lang.OpLessEqual:
				return c <= 0
			default:
				return c >= 0
			}
		}
	}

	return truthy(e.value(stmt, scope))
}

// compare orders two values numerically when both are numbers and lexically
// otherwise.
func compare(a, b string) int {
	x, errA := strconv.ParseFloat(a, 64)
	y, errB := strconv.ParseFloat(b, 64)

	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}

	return cmp.Compare(x, y)
}

// newScope returns a compiled, empty namespace below parent that is not
// registered as a key of parent.
func newScope(e *Engine, parent *Namespace) *Namespace {
	ns := newNamespace(e, parent)
	ns.state = done

	return ns
}
