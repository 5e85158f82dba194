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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:     "valid_config",
			filename: "hotify.yml",
			config: `
hotify_hot_folder_name: _HOTIFY_
hotify_output_folder_name: _OUTPUT_
hotify_input_multiple_files_delay: 3
hotify_environments:
  - name: resize
    in_pattern: ["*.jpg", "*.png"]
    trigger: "convert {in_file} -resize 50% {out_file}"
  - name: merge
    in_pattern: ["*.pdf"]
    trigger: "pdftk {in_files} cat output {out_file}"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "_HOTIFY_", cfg.HotFolderName, "hot folder name should match")
				assert.Equal(t, "_OUTPUT_", cfg.OutputFolderName, "output folder name should match")
				assert.Equal(t, 3*time.Second, cfg.MultipleFilesDelayDuration(), "delay should match")
				require.Len(t, cfg.Environments, 2, "should have 2 environments")
				assert.Equal(t, "resize", cfg.Environments[0].Name, "first environment name should match")
				assert.Equal(t, []string{"*.jpg", "*.png"}, cfg.Environments[0].InPattern, "patterns should match")
				assert.False(t, cfg.Environments[0].Trigger.IsPipeline(), "single trigger is not a pipeline")
				assert.Equal(t, []string{"convert {in_file} -resize 50% {out_file}"},
					cfg.Environments[0].Trigger.Steps(), "trigger steps should match")
			},
		},
		{
			name:     "pipeline_trigger",
			filename: "hotify.yaml",
			config: `
hotify_hot_folder_name: hot
hotify_output_folder_name: out
hotify_input_multiple_files_delay: 1.5
hotify_environments:
  - name: ocr
    in_pattern: ["*.pdf"]
    trigger:
      - "pdftoppm {in_file} {out_file}"
      - "tesseract {in_file} {out_file}"
      - "gzip -c {in_file} > {out_file}"
`,
			check: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Environments, 1, "should have 1 environment")
				trigger := cfg.Environments[0].Trigger
				assert.True(t, trigger.IsPipeline(), "three steps form a pipeline")
				assert.Len(t, trigger.Steps(), 3, "should have 3 steps")
				assert.Equal(t, 1500*time.Millisecond, cfg.MultipleFilesDelayDuration(), "fractional delay should work")
			},
		},
		{
			name:     "hcl_config",
			filename: "hotify.hcl",
			config: `
hot_folder_name            = "_HOTIFY_"
output_folder_name         = "_OUTPUT_"
input_multiple_files_delay = 3

environment "resize" {
  in_pattern = ["*.jpg"]
  trigger    = "convert {in_file} -resize 50% {out_file}"
}

environment "archive" {
  in_pattern = ["*.log"]
  trigger    = ["gzip -k {in_file}", "mv {in_file} {out_file}"]
}
`,
			check: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Environments, 2, "should have 2 environments")
				assert.Equal(t, "resize", cfg.Environments[0].Name, "label becomes the name")
				assert.False(t, cfg.Environments[0].Trigger.IsPipeline(), "scalar trigger is single step")
				assert.True(t, cfg.Environments[1].Trigger.IsPipeline(), "list trigger is a pipeline")
				assert.Len(t, cfg.Environments[1].Trigger.Steps(), 2, "should have 2 steps")
			},
		},
		{
			name:     "unknown_key_rejected",
			filename: "hotify.yml",
			config: `
hotify_hot_folder_name: hot
hotify_output_folder_name: out
hotify_input_multiple_files_delay: 3
hotify_surprise: true
hotify_environments:
  - name: a
    in_pattern: ["*"]
    trigger: "true"
`,
			wantErr:     true,
			errContains: "parsing config",
		},
		{
			name:     "missing_hot_folder_name",
			filename: "hotify.yml",
			config: `
hotify_output_folder_name: out
hotify_input_multiple_files_delay: 3
hotify_environments:
  - name: a
    in_pattern: ["*"]
    trigger: "true"
`,
			wantErr:     true,
			errContains: "hotify_hot_folder_name is required",
		},
		{
			name:     "zero_delay",
			filename: "hotify.yml",
			config: `
hotify_hot_folder_name: hot
hotify_output_folder_name: out
hotify_input_multiple_files_delay: 0
hotify_environments:
  - name: a
    in_pattern: ["*"]
    trigger: "true"
`,
			wantErr:     true,
			errContains: "must be positive",
		},
		{
			name:     "duplicate_environment",
			filename: "hotify.yml",
			config: `
hotify_hot_folder_name: hot
hotify_output_folder_name: out
hotify_input_multiple_files_delay: 3
hotify_environments:
  - name: a
    in_pattern: ["*"]
    trigger: "true"
  - name: a
    in_pattern: ["*"]
    trigger: "false"
`,
			wantErr:     true,
			errContains: "duplicate environment name",
		},
		{
			name:     "missing_trigger",
			filename: "hotify.yml",
			config: `
hotify_hot_folder_name: hot
hotify_output_folder_name: out
hotify_input_multiple_files_delay: 3
hotify_environments:
  - name: a
    in_pattern: ["*"]
`,
			wantErr:     true,
			errContains: "trigger is required",
		},
		{
			name:     "env_name_with_separator",
			filename: "hotify.yml",
			config: `
hotify_hot_folder_name: hot
hotify_output_folder_name: out
hotify_input_multiple_files_delay: 3
hotify_environments:
  - name: "a/b"
    in_pattern: ["*"]
    trigger: "true"
`,
			wantErr:     true,
			errContains: "plain folder name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

			path := filepath.Join(t.TempDir(), tt.filename)
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0o644), "writing config file")

			cfg, err := Load(ctx, path)
			if tt.wantErr {
				require.Error(t, err, "Load should fail")
				assert.Contains(t, err.Error(), tt.errContains, "error should mention the cause")
				return
			}

			require.NoError(t, err, "Load should succeed")
			tt.check(t, cfg)
		})
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	path := filepath.Join(t.TempDir(), "hotify.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644), "writing config file")

	_, err := Load(ctx, path)
	require.Error(t, err, "Load should fail for unsupported format")
	assert.Contains(t, err.Error(), "no parser found", "error should mention missing parser")
}
