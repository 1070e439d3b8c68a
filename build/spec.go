package build

// RuleSpec is the resolved configuration of one build step.
type RuleSpec struct {
	Name         string   `expr:"name"         json:"name"                   yaml:"name"`
	Command      []string `expr:"command"      json:"command,omitempty"      yaml:"command,omitempty"`
	Message      []string `expr:"message"      json:"message,omitempty"      yaml:"message,omitempty"`
	Input        []string `expr:"input"        json:"input,omitempty"        yaml:"input,omitempty"`
	Output       []string `expr:"output"       json:"output,omitempty"       yaml:"output,omitempty"`
	Dependencies []string `expr:"dependencies" json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// TargetSpec is the resolved configuration of a target: its final step and
// one step per source file.
type TargetSpec struct {
	RuleSpec `yaml:",inline"`

	Files []RuleSpec `expr:"files" json:"files,omitempty" yaml:"files,omitempty"`
}

// Configuration holds the targets resolved for one platform and
// configuration.
type Configuration struct {
	Platform      string       `json:"platform"      yaml:"platform"`
	Configuration string       `json:"configuration" yaml:"configuration"`
	Targets       []TargetSpec `json:"targets"       yaml:"targets"`
}
