package config

import (
	"context"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	return &cfg, nil
}

// UnmarshalYAML accepts either a scalar (single command) or a sequence of
// scalars (pipeline), matching the `trigger: string | [string, ...]` schema.
func (t *Trigger) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var step string
		if err := value.Decode(&step); err != nil {
			return errors.Errorf("decoding trigger: %w", err)
		}
		t.steps = []string{step}
		return nil
	case yaml.SequenceNode:
		var steps []string
		if err := value.Decode(&steps); err != nil {
			return errors.Errorf("decoding trigger pipeline: %w", err)
		}
		t.steps = steps
		return nil
	default:
		return errors.Errorf("trigger must be a string or a list of strings")
	}
}

// MarshalYAML renders single-step triggers as a scalar, pipelines as a list.
func (t Trigger) MarshalYAML() (interface{}, error) {
	if len(t.steps) == 1 {
		return t.steps[0], nil
	}
	return t.steps, nil
}
