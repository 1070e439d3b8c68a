package engine

import (
	"log/slog"
	"slices"

	"github.com/craflin/mare-sub000/lang"
)

// state is the visitation marker of a script or namespace compilation.
type state uint8

const (
	unvisited state = iota
	inProgress
	done
)

// script is a deferred binding: a statement, or a list of literal words,
// executed into a namespace on demand.
type script struct {
	stmt    lang.Statement
	literal []string
	scope   *Namespace // keys added directly to a default key
	state   state
}

// Namespace is a scope of lazily resolved keys.
//
// A namespace executes the newest usable script of its shadow chain the first
// time its keys are needed. Each key of the resulting key set is itself a
// namespace whose shadow chain holds every binding made to that key, newest
// first.
type Namespace struct {
	engine *Engine
	parent *Namespace

	scripts []*script // shadow chain, newest first
	state   state

	keys      map[string]*Namespace
	order     []string
	inherited map[string]*Namespace
	unnamed   *Namespace
}

func newNamespace(e *Engine, parent *Namespace, scripts ...*script) *Namespace {
	return &Namespace{
		engine:  e,
		parent:  parent,
		scripts: scripts,
		keys:    map[string]*Namespace{},
	}
}

// Parent returns the enclosing namespace, or nil for the outermost one.
func (n *Namespace) Parent() *Namespace { return n.parent }

// compile executes the namespace's script once. Re-entry while the script is
// running returns immediately with the keys bound so far.
func (n *Namespace) compile() {
	if n.state != unvisited {
		return
	}

	n.state = inProgress
	defer func() { n.state = done }()

	for _, s := range n.scripts {
		if s.state == inProgress {
			continue
		}

		n.engine.run(s, n)

		return
	}
}

// Keys returns the key set in insertion order.
func (n *Namespace) Keys() []string {
	n.compile()

	return slices.Clone(n.order)
}

// FirstKey returns the first key, or "" if the key set is empty.
func (n *Namespace) FirstKey() string {
	n.compile()

	if len(n.order) == 0 {
		return ""
	}

	return n.order[0]
}

// Text returns the keys joined into one string.
func (n *Namespace) Text() string {
	return JoinWords(n.Keys())
}

// HasKey reports whether name is bound locally.
func (n *Namespace) HasKey(name string) bool {
	n.compile()

	_, ok := n.keys[name]

	return ok
}

// EnterKey returns the namespace of key name.
//
// A local binding is returned as is. Otherwise, if inherit is set, the
// binding is resolved through the enclosing namespaces and wrapped in a new
// namespace parented at n, so that names in the inherited value resolve from
// n. Inherited namespaces are cached. EnterKey returns nil if name is not
// bound.
func (n *Namespace) EnterKey(name string, inherit bool) *Namespace {
	n.compile()

	if child, ok := n.keys[name]; ok && child.state != inProgress {
		return child
	}

	if !inherit {
		return nil
	}

	// Resolution of a key from within its own value continues with older
	// bindings. The result depends on what is running, so it is not cached.
	if _, ok := n.keys[name]; ok {
		s, _ := n.engine.resolveScript(name, n)
		if s == nil {
			return nil
		}

		return newNamespace(n.engine, n, s)
	}

	if ns, ok := n.inherited[name]; ok && ns.state != inProgress {
		return ns
	}

	s, skipped := n.engine.resolveScript(name, n.parent)
	if s == nil {
		return nil
	}

	ns := newNamespace(n.engine, n, s)

	if !skipped {
		if n.inherited == nil {
			n.inherited = map[string]*Namespace{}
		}

		n.inherited[name] = ns
	}

	n.engine.logger.Trace("inherit",
		slog.String("key", name),
		slog.Bool("cached", !skipped))

	return ns
}

// EnterUnnamedKey returns a new empty child namespace that replaces any
// previous unnamed child of n.
func (n *Namespace) EnterUnnamedKey() *Namespace {
	n.compile()
	n.unnamed = newScope(n.engine, n)

	return n.unnamed
}

// EnterDefaultKey returns the namespace of key name, creating an empty one if
// name is not bound locally.
func (n *Namespace) EnterDefaultKey(name string) *Namespace {
	n.compile()

	if child, ok := n.keys[name]; ok {
		return child
	}

	child := newScope(n.engine, n)
	child.scripts = []*script{{scope: child}}
	n.keys[name] = child
	n.order = append(n.order, name)

	return child
}

// AddDefaultKey binds name to the literal value unless name is already bound
// locally. An empty value binds a key with no value.
func (n *Namespace) AddDefaultKey(name, value string) {
	n.compile()

	if _, ok := n.keys[name]; ok {
		return
	}

	s := &script{}
	if value != "" {
		s.literal = []string{value}
	}

	n.bind(name, s)
}

// bind pushes s in front of the shadow chain of key name. A new key is
// appended to the key order; a rebound key keeps its position.
func (n *Namespace) bind(name string, s *script) {
	child, ok := n.keys[name]
	if !ok {
		n.keys[name] = newNamespace(n.engine, n, s)
		n.order = append(n.order, name)

		return
	}

	scripts := append([]*script{s}, child.scripts...)

	if child.state == unvisited {
		child.scripts = scripts

		return
	}

	n.keys[name] = newNamespace(n.engine, n, scripts...)
}

// addKey binds name with no value unless it is already bound.
func (n *Namespace) addKey(name string) {
	if _, ok := n.keys[name]; ok {
		return
	}

	n.bind(name, &script{})
}

// removeKey drops name from the key set.
func (n *Namespace) removeKey(name string) {
	if _, ok := n.keys[name]; !ok {
		return
	}

	delete(n.keys, name)

	n.order = slices.DeleteFunc(n.order, func(k string) bool { return k == name })
}
