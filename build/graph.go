package build

import (
	"log/slog"
	"slices"

	"github.com/craflin/mare-sub000/log"
)

// Rule is one build step.
type Rule struct {
	RuleSpec

	target *Target

	deps       []*Rule // rules whose outputs this rule consumes
	dependents []*Rule // rules consuming this rule's outputs
	pending    int     // deps not yet finished

	rebuild  bool // the rule ran or must run its commands
	dirty    bool // a dependency was rebuilt
	finished bool
	command  int // index of the running command
}

// Target is a named group of rules: one per source file and a final rule
// whose outputs represent the target.
type Target struct {
	Name  string
	Rules []*Rule // file rules followed by the final rule
	Final *Rule

	active bool
}

// RuleSet is the dependency graph of one platform and configuration.
type RuleSet struct {
	targets map[string]*Target
	order   []*Target
	outputs map[string]*Rule
	active  []*Target

	activeRules   int
	finishedRules int

	noDeps bool
	logger log.Logger
}

// NewRuleSet creates the rules of every target and registers their outputs.
// When two rules declare the same output the first one keeps it.
// Only [WithIgnoreDependencies] and [WithLogger] apply.
func NewRuleSet(specs []TargetSpec, opts ...Option) *RuleSet {
	c := makeConfig(opts...)

	rs := &RuleSet{
		targets: map[string]*Target{},
		outputs: map[string]*Rule{},
		noDeps:  c.noDeps,
		logger:  c.logger,
	}

	for _, spec := range specs {
		t := &Target{Name: spec.Name}

		for _, f := range spec.Files {
			t.Rules = append(t.Rules, &Rule{RuleSpec: cloneSpec(f), target: t})
		}

		t.Final = &Rule{RuleSpec: cloneSpec(spec.RuleSpec), target: t}
		t.Rules = append(t.Rules, t.Final)

		if _, ok := rs.targets[t.Name]; ok {
			rs.logger.Warn("duplicate target", slog.String("target", t.Name))

			continue
		}

		rs.targets[t.Name] = t
		rs.order = append(rs.order, t)

		for _, r := range t.Rules {
			rs.register(r)
		}
	}

	return rs
}

func cloneSpec(s RuleSpec) RuleSpec {
	s.Command = slices.Clone(s.Command)
	s.Message = slices.Clone(s.Message)
	s.Input = slices.Clone(s.Input)
	s.Output = slices.Clone(s.Output)
	s.Dependencies = slices.Clone(s.Dependencies)

	return s
}

func (rs *RuleSet) register(r *Rule) {
	for _, out := range r.Output {
		if first, ok := rs.outputs[out]; ok {
			if first != r {
				rs.logger.Warn("output declared by more than one rule",
					slog.String("output", out),
					slog.String("rule", r.Name),
					slog.String("kept", first.Name))
			}

			continue
		}

		rs.outputs[out] = r
	}
}

// Targets returns the target names in declaration order.
func (rs *RuleSet) Targets() []string {
	names := make([]string, len(rs.order))
	for i, t := range rs.order {
		names[i] = t.Name
	}

	return names
}

// Target returns the named target, or nil.
func (rs *RuleSet) Target(name string) *Target { return rs.targets[name] }

// Activate marks the named targets, or all targets if names is empty, to
// be built and links the rules of every active target to the rules
// producing their inputs. Activation spreads to the producing targets
// unless dependencies are ignored. Unknown names are an error and nothing
// is activated.
func (rs *RuleSet) Activate(names ...string) error {
	var queue []*Target

	if len(names) == 0 {
		queue = slices.Clone(rs.order)
	}

	for _, name := range names {
		t, ok := rs.targets[name]
		if !ok {
			return UnknownName(ErrUnknownTarget, name, rs.Targets())
		}

		queue = append(queue, t)
	}

	for _, t := range queue {
		rs.activate(t)
	}

	for i := 0; i < len(rs.active); i++ {
		for _, r := range rs.active[i].Rules {
			rs.link(r)
		}
	}

	return nil
}

func (rs *RuleSet) activate(t *Target) {
	if t.active {
		return
	}

	t.active = true
	rs.active = append(rs.active, t)
	rs.activeRules += len(t.Rules)
}

// link connects r to the final rules of its declared target dependencies
// and to the producers of its inputs. The outputs of a dependency are added
// to the inputs of r so that they count for the rebuild decision.
func (rs *RuleSet) link(r *Rule) {
	for _, name := range r.Dependencies {
		dep, ok := rs.targets[name]
		if !ok {
			rs.logger.Warn("unknown dependency",
				slog.String("rule", r.Name),
				slog.String("dependency", name))

			continue
		}

		r.Input = append(r.Input, dep.Final.Output...)
		rs.connect(r, dep.Final)
	}

	for _, in := range r.Input {
		if producer, ok := rs.outputs[in]; ok {
			rs.connect(r, producer)
		}
	}
}

// connect makes r wait for producer, activating the target of producer
// unless dependencies are ignored. Inactive producers are skipped when
// they are.
func (rs *RuleSet) connect(r, producer *Rule) {
	if producer == r || slices.Contains(r.deps, producer) {
		return
	}

	if !producer.target.active {
		if rs.noDeps {
			return
		}

		rs.activate(producer.target)
	}

	r.deps = append(r.deps, producer)
	producer.dependents = append(producer.dependents, r)
	r.pending++
}

// ActiveRules returns the number of rules to build.
func (rs *RuleSet) ActiveRules() int { return rs.activeRules }

// FinishedRules returns the number of rules finished by the last run.
func (rs *RuleSet) FinishedRules() int { return rs.finishedRules }
