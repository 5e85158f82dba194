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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclEnvironment struct {
		Name      string    `hcl:"name,label"`
		InPattern []string  `hcl:"in_pattern"`
		Trigger   cty.Value `hcl:"trigger"`
	}
	type hclConfig struct {
		HotFolderName      string           `hcl:"hot_folder_name"`
		OutputFolderName   string           `hcl:"output_folder_name"`
		MultipleFilesDelay float64          `hcl:"input_multiple_files_delay"`
		Environments       []hclEnvironment `hcl:"environment,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to config
	cfg := &Config{
		HotFolderName:      hclCfg.HotFolderName,
		OutputFolderName:   hclCfg.OutputFolderName,
		MultipleFilesDelay: hclCfg.MultipleFilesDelay,
	}
	for _, env := range hclCfg.Environments {
		trigger, err := triggerFromCty(env.Trigger)
		if err != nil {
			return nil, errors.Errorf("environment %s: %w", env.Name, err)
		}
		cfg.Environments = append(cfg.Environments, Environment{
			Name:      env.Name,
			InPattern: env.InPattern,
			Trigger:   trigger,
		})
	}

	return cfg, nil
}

// 🔄 triggerFromCty converts an HCL value that is either a string or a list
// of strings into a Trigger.
func triggerFromCty(v cty.Value) (Trigger, error) {
	if v.IsNull() {
		return Trigger{}, errors.Errorf("trigger is required")
	}

	if v.Type() == cty.String {
		return NewTrigger(v.AsString()), nil
	}

	if v.Type().IsTupleType() || v.Type().IsListType() {
		var steps []string
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			if elem.Type() != cty.String {
				return Trigger{}, errors.Errorf("trigger steps must be strings")
			}
			steps = append(steps, elem.AsString())
		}
		return NewTrigger(steps...), nil
	}

	return Trigger{}, errors.Errorf("trigger must be a string or a list of strings")
}
