package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/hotify/pkg/config"
	"github.com/walteh/hotify/pkg/log"
	"github.com/walteh/hotify/pkg/trigger"
)

// CatchAllPattern is the input pattern for pipeline steps after the first.
// The environment's in_pattern gates what counts as valid raw input;
// intermediate artifacts are picked up whatever their extension.
const CatchAllPattern = "*"

// 🔧 RegistrarOptions contains configuration for the environment registrar
type RegistrarOptions struct {
	// Observer receives the wired handlers
	Observer *Observer
	// HotRoot is where environment folders are created
	HotRoot string
	// OutputRoot is the shared final output folder
	OutputRoot string
	// Delay is the multi-file quiescence delay
	Delay time.Duration
	// Settle overrides the stability sampling interval
	Settle time.Duration
	// Console receives operator-facing lines
	Console *log.Logger
}

// 🗂️ Registrar turns environment definitions into watched-folder
// hierarchies: it creates the folders, builds one executor per trigger step,
// rewires each step's output folder into the next step's watched folder, and
// schedules a handler per folder on the observer.
type Registrar struct {
	observer   *Observer
	hotRoot    string
	outputRoot string
	delay      time.Duration
	settle     time.Duration
	console    *log.Logger
}

// 🏭 NewRegistrar creates a registrar with the given options
func NewRegistrar(opts RegistrarOptions) (*Registrar, error) {
	if opts.Observer == nil {
		return nil, errors.Errorf("observer is required")
	}
	if opts.HotRoot == "" {
		return nil, errors.Errorf("hot root is required")
	}
	if opts.OutputRoot == "" {
		return nil, errors.Errorf("output root is required")
	}
	if opts.Delay <= 0 {
		return nil, errors.Errorf("delay must be positive")
	}
	if opts.Console == nil {
		return nil, errors.Errorf("console logger is required")
	}
	return &Registrar{
		observer:   opts.Observer,
		hotRoot:    opts.HotRoot,
		outputRoot: opts.OutputRoot,
		delay:      opts.Delay,
		settle:     opts.Settle,
		console:    opts.Console,
	}, nil
}

// 📋 RegisterAll wires every configured environment
func (r *Registrar) RegisterAll(ctx context.Context, envs []config.Environment) error {
	for _, env := range envs {
		if err := r.Register(ctx, env); err != nil {
			return errors.Errorf("registering environment %s: %w", env.Name, err)
		}
	}
	return nil
}

// 📝 Register wires one environment. Step 0 watches the environment's root
// folder with the environment's own patterns; steps after that each watch a
// dedicated step_NNN folder with a catch-all pattern, so outputs of the
// previous step are picked up without re-validating against the original
// input pattern. Every step but the last writes into the next step's folder;
// the last writes into the shared output root.
func (r *Registrar) Register(ctx context.Context, env config.Environment) error {
	logger := zerolog.Ctx(ctx)

	envRoot := filepath.Join(r.hotRoot, env.Name)
	if err := os.MkdirAll(envRoot, 0o755); err != nil {
		return errors.Errorf("creating environment folder: %w", err)
	}

	steps := env.Trigger.Steps()
	for i, step := range steps {
		watchDir := envRoot
		patterns := env.InPattern
		if i > 0 {
			watchDir = filepath.Join(envRoot, stepFolder(i))
			patterns = []string{CatchAllPattern}
			if err := os.MkdirAll(watchDir, 0o755); err != nil {
				return errors.Errorf("creating step folder: %w", err)
			}
		}

		outputDir := r.outputRoot
		if i < len(steps)-1 {
			outputDir = filepath.Join(envRoot, stepFolder(i+1))
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return errors.Errorf("creating step output folder: %w", err)
			}
		}

		handler, err := NewHandler(HandlerOptions{
			Env:      env.Name,
			Dir:      watchDir,
			Patterns: patterns,
			Executor: trigger.NewExecutor(step, outputDir),
			Delay:    r.delay,
			Settle:   r.settle,
			Console:  r.console,
		})
		if err != nil {
			return errors.Errorf("creating handler for step %d: %w", i, err)
		}

		if err := r.observer.Schedule(handler); err != nil {
			return errors.Errorf("scheduling handler for step %d: %w", i, err)
		}

		logger.Debug().
			Str("env", env.Name).
			Int("step", i).
			Str("watch", watchDir).
			Str("output", outputDir).
			Msg("trigger step registered")
		r.console.Watching(env.Name, watchDir, strings.Join(patterns, ", "))
	}

	return nil
}

// stepFolder names the dedicated folder of pipeline step i (step_001,
// step_002, ...).
func stepFolder(i int) string {
	return fmt.Sprintf("step_%03d", i)
}
