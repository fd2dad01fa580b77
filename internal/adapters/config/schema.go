package config

import (
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Pourfile represents the structure of the pour.yaml task file.
type Pourfile struct {
	Version string              `yaml:"version"`
	Root    string              `yaml:"root"`
	Tasks   map[string]*TaskDTO `yaml:"tasks"`
}

// TaskDTO represents a task definition in the task file.
type TaskDTO struct {
	Description string            `yaml:"description"`
	DependsOn   []string          `yaml:"dependsOn"`
	Cmd         []string          `yaml:"cmd"`
	Environment map[string]string `yaml:"environment"`
	WorkingDir  string            `yaml:"workingDir"`
	Streams     []StreamDTO       `yaml:"streams"`
	Watch       []WatchDTO        `yaml:"watch"`
	Serve       *ServeDTO         `yaml:"serve"`
	Input       []string          `yaml:"input"`
	Target      []string          `yaml:"target"`
}

// StreamDTO is one file pipeline of a task.
type StreamDTO struct {
	Src   []string  `yaml:"src"`
	Base  string    `yaml:"base"`
	Steps []StepDTO `yaml:"steps"`
}

// StepDTO is a pipeline step. It is written either as a bare step name
// or as a mapping with "use" and optional "with" options.
type StepDTO struct {
	Use  string         `yaml:"use"`
	With map[string]any `yaml:"with"`
}

// UnmarshalYAML accepts the bare-name shorthand.
func (s *StepDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		s.Use = node.Value
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return zerr.With(zerr.New("step must be a name or a mapping"), "line", node.Line)
	}

	type plain StepDTO
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = StepDTO(p)
	return nil
}

// WatchDTO binds glob patterns to tasks or to a browser reload.
type WatchDTO struct {
	Paths  []string `yaml:"paths"`
	Run    []string `yaml:"run"`
	Reload bool     `yaml:"reload"`
}

// ServeDTO configures the live-reload proxy.
type ServeDTO struct {
	Proxy   string     `yaml:"proxy"`
	Listen  string     `yaml:"listen"`
	WS      *bool      `yaml:"ws"`
	DocRoot string     `yaml:"docRoot"`
	Watch   []WatchDTO `yaml:"watch"`
}
