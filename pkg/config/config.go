// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔗 Trigger is either a single command template or an ordered pipeline of
// command templates. Each template may reference the placeholders {in_file},
// {in_files} and {out_file}.
type Trigger struct {
	steps []string
}

// 🏭 NewTrigger creates a trigger from an ordered list of command templates
func NewTrigger(steps ...string) Trigger {
	return Trigger{steps: steps}
}

// 📝 Steps returns the ordered command templates of the trigger
func (t Trigger) Steps() []string {
	return t.steps
}

// 🔍 IsPipeline reports whether the trigger chains more than one command
func (t Trigger) IsPipeline() bool {
	return len(t.steps) > 1
}

// 📝 String returns a string representation of the trigger
func (t Trigger) String() string {
	return strings.Join(t.steps, " | ")
}

// 🌍 Environment represents one hot folder environment
type Environment struct {
	Name      string   `yaml:"name"`
	InPattern []string `yaml:"in_pattern"`
	Trigger   Trigger  `yaml:"trigger"`
}

// 📚 Config represents the complete hotify configuration
type Config struct {
	HotFolderName      string        `yaml:"hotify_hot_folder_name"`
	OutputFolderName   string        `yaml:"hotify_output_folder_name"`
	MultipleFilesDelay float64       `yaml:"hotify_input_multiple_files_delay"` // seconds
	Environments       []Environment `yaml:"hotify_environments"`
}

// ⏱️ MultipleFilesDelayDuration returns the quiescence delay as a duration
func (cfg *Config) MultipleFilesDelayDuration() time.Duration {
	return time.Duration(cfg.MultipleFilesDelay * float64(time.Second))
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	// Check required fields
	if cfg.HotFolderName == "" {
		return errors.Errorf("hotify_hot_folder_name is required")
	}
	if cfg.OutputFolderName == "" {
		return errors.Errorf("hotify_output_folder_name is required")
	}
	if cfg.HotFolderName == cfg.OutputFolderName {
		return errors.Errorf("hot folder and output folder must differ")
	}
	if cfg.MultipleFilesDelay <= 0 {
		return errors.Errorf("hotify_input_multiple_files_delay must be positive")
	}
	if len(cfg.Environments) == 0 {
		return errors.Errorf("hotify_environments is required")
	}

	// Check environments
	seen := map[string]bool{}
	for _, env := range cfg.Environments {
		if env.Name == "" {
			return errors.Errorf("environment name is required")
		}
		if strings.ContainsAny(env.Name, `/\`) {
			return errors.Errorf("environment name %q must be a plain folder name", env.Name)
		}
		if seen[env.Name] {
			return errors.Errorf("duplicate environment name: %s", env.Name)
		}
		seen[env.Name] = true

		if len(env.InPattern) == 0 {
			return errors.Errorf("environment %s: in_pattern is required", env.Name)
		}
		if len(env.Trigger.Steps()) == 0 {
			return errors.Errorf("environment %s: trigger is required", env.Name)
		}
		for _, step := range env.Trigger.Steps() {
			if strings.TrimSpace(step) == "" {
				return errors.Errorf("environment %s: trigger step must not be empty", env.Name)
			}
		}
	}

	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s -> %s (%d environments)",
		cfg.HotFolderName, cfg.OutputFolderName, len(cfg.Environments))
}
