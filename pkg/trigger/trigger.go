// Package trigger renders command templates and runs them as child processes.
package trigger

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Command template placeholders. Templates are rendered by literal
// substitution; no shell interpolation or expansion is performed.
const (
	PlaceholderInFile  = "{in_file}"
	PlaceholderInFiles = "{in_files}"
	PlaceholderOutFile = "{out_file}"
)

// BatchOutputPrefix is prepended to the first input's base name to form the
// output file name of a batch execution.
const BatchOutputPrefix = "multiple--"

// 🎯 Executor runs one trigger step: it substitutes the resolved input and
// output paths into the command template and launches the result as a child
// process, blocking until it exits.
type Executor struct {
	template  string
	outputDir string
	multi     bool
}

// 🏭 NewExecutor creates an executor for one command template writing into
// outputDir. Whether the executor expects a batch of inputs is derived from
// the template itself: the presence of {in_files} selects batch mode.
func NewExecutor(template, outputDir string) *Executor {
	return &Executor{
		template:  template,
		outputDir: outputDir,
		multi:     strings.Contains(template, PlaceholderInFiles),
	}
}

// 🔍 Multi reports whether this executor fires on batches of input files.
func (e *Executor) Multi() bool {
	return e.multi
}

// 📂 OutputDir returns the directory the executor writes into.
func (e *Executor) OutputDir() string {
	return e.outputDir
}

// Template returns the raw command template.
func (e *Executor) Template() string {
	return e.template
}

// ▶️ ExecuteSingle runs the trigger for one input file. The output path is
// the output directory joined with the input's base name.
func (e *Executor) ExecuteSingle(ctx context.Context, inFile string) error {
	outFile := filepath.Join(e.outputDir, filepath.Base(inFile))
	rendered := strings.NewReplacer(
		PlaceholderInFile, inFile,
		PlaceholderOutFile, outFile,
	).Replace(e.template)

	return e.run(ctx, rendered)
}

// ▶️ ExecuteBatch runs the trigger for a batch of input files. The paths are
// individually double-quoted and space-joined into {in_files}; the output
// path is the output directory joined with "multiple--" plus the first
// input's base name.
func (e *Executor) ExecuteBatch(ctx context.Context, inFiles []string) error {
	if len(inFiles) == 0 {
		return nil
	}

	outFile := filepath.Join(e.outputDir, BatchOutputPrefix+filepath.Base(inFiles[0]))
	quoted := make([]string, len(inFiles))
	for i, inFile := range inFiles {
		quoted[i] = fmt.Sprintf("%q", inFile)
	}
	rendered := strings.NewReplacer(
		PlaceholderInFiles, strings.Join(quoted, " "),
		PlaceholderOutFile, outFile,
	).Replace(e.template)

	return e.run(ctx, rendered)
}

// run splits the rendered command shell-style and executes it. Exit codes 0
// and 1 both count as success; anything above 1, or a failure to launch at
// all, is returned as an error. Callers log and carry on: a failed trigger
// must never stop the watcher.
func (e *Executor) run(ctx context.Context, rendered string) error {
	logger := zerolog.Ctx(ctx)

	argv, err := shlex.Split(rendered)
	if err != nil {
		return errors.Errorf("splitting command %q: %w", rendered, err)
	}
	if len(argv) == 0 {
		return errors.Errorf("rendered command is empty")
	}

	logger.Debug().Strs("argv", argv).Msg("executing trigger")

	// Deliberately not exec.CommandContext: an in-flight trigger is never
	// force-killed, not even on shutdown.
	cmd := exec.Command(argv[0], argv[1:]...)
	// Stdout and Stderr stay nil so the child writes to the null device.
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if code := exitErr.ExitCode(); code > 1 {
				return errors.Errorf("trigger %q exited with code %d", argv[0], code)
			}
			// Exit code 1 is treated as success, same as 0. Commands that
			// use 1 to signal real failure must remap it themselves.
			logger.Debug().Str("bin", argv[0]).Msg("trigger exited 1, treating as success")
			return nil
		}
		return errors.Errorf("launching trigger %q: %w", argv[0], err)
	}

	return nil
}
