package watcher

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/hotify/pkg/config"
	"github.com/walteh/hotify/pkg/log"
)

func testConsole(t *testing.T) *log.Logger {
	return log.New(io.Discard, zerolog.New(zerolog.NewTestWriter(t)))
}

func newTestRegistrar(t *testing.T) (*Registrar, *Observer, string, string) {
	base := t.TempDir()
	hotRoot := filepath.Join(base, "_HOTIFY_")
	outputRoot := filepath.Join(base, "_OUTPUT_")
	console := testConsole(t)

	observer, err := NewObserver(ObserverOptions{HotRoot: hotRoot, Console: console})
	require.NoError(t, err, "creating observer")
	t.Cleanup(func() { _ = observer.fsw.Close() })

	registrar, err := NewRegistrar(RegistrarOptions{
		Observer:   observer,
		HotRoot:    hotRoot,
		OutputRoot: outputRoot,
		Delay:      3 * time.Second,
		Console:    console,
	})
	require.NoError(t, err, "creating registrar")

	return registrar, observer, hotRoot, outputRoot
}

func TestRegisterSingleTrigger(t *testing.T) {
	registrar, observer, hotRoot, outputRoot := newTestRegistrar(t)

	env := config.Environment{
		Name:      "resize",
		InPattern: []string{"*.jpg"},
		Trigger:   config.NewTrigger("convert {in_file} -resize 50% {out_file}"),
	}
	require.NoError(t, registrar.Register(context.Background(), env), "registering environment")

	envRoot := filepath.Join(hotRoot, "resize")
	assert.DirExists(t, envRoot, "environment folder should be created")

	h := observer.HandlerFor(envRoot)
	require.NotNil(t, h, "environment root should have a handler")
	assert.Equal(t, []string{"*.jpg"}, h.Patterns(), "root handler uses the environment's pattern")
	assert.Equal(t, outputRoot, h.Executor().OutputDir(), "single trigger writes to the shared output root")
	assert.False(t, h.Executor().Multi(), "single-file template")
}

func TestRegisterPipelineWiring(t *testing.T) {
	registrar, observer, hotRoot, outputRoot := newTestRegistrar(t)

	env := config.Environment{
		Name:      "ocr",
		InPattern: []string{"*.pdf"},
		Trigger: config.NewTrigger(
			"step-a {in_file} {out_file}",
			"step-b {in_file} {out_file}",
			"step-c {in_file} {out_file}",
		),
	}
	require.NoError(t, registrar.Register(context.Background(), env), "registering environment")

	envRoot := filepath.Join(hotRoot, "ocr")
	step1 := filepath.Join(envRoot, "step_001")
	step2 := filepath.Join(envRoot, "step_002")
	assert.DirExists(t, step1, "first intermediate folder should exist")
	assert.DirExists(t, step2, "second intermediate folder should exist")

	// Step 0: environment root, environment pattern, outputs to step_001.
	h0 := observer.HandlerFor(envRoot)
	require.NotNil(t, h0, "step 0 handler")
	assert.Equal(t, []string{"*.pdf"}, h0.Patterns(), "step 0 keeps the environment's pattern")
	assert.Equal(t, step1, h0.Executor().OutputDir(), "step 0 outputs to step_001")

	// Step 1: step_001 folder, catch-all pattern, outputs to step_002.
	h1 := observer.HandlerFor(step1)
	require.NotNil(t, h1, "step 1 handler")
	assert.Equal(t, []string{CatchAllPattern}, h1.Patterns(), "later steps use the catch-all pattern")
	assert.Equal(t, step2, h1.Executor().OutputDir(), "step 1 outputs to step_002")

	// Step 2: step_002 folder, catch-all pattern, outputs to the shared root.
	h2 := observer.HandlerFor(step2)
	require.NotNil(t, h2, "step 2 handler")
	assert.Equal(t, []string{CatchAllPattern}, h2.Patterns(), "later steps use the catch-all pattern")
	assert.Equal(t, outputRoot, h2.Executor().OutputDir(), "last step outputs to the shared root")
}

func TestRegisterSingleStepPipeline(t *testing.T) {
	registrar, observer, hotRoot, outputRoot := newTestRegistrar(t)

	// A one-element pipeline behaves exactly like a single trigger.
	env := config.Environment{
		Name:      "solo",
		InPattern: []string{"*.txt"},
		Trigger:   config.NewTrigger("cp {in_file} {out_file}"),
	}
	require.NoError(t, registrar.Register(context.Background(), env), "registering environment")

	h := observer.HandlerFor(filepath.Join(hotRoot, "solo"))
	require.NotNil(t, h, "handler should exist")
	assert.Equal(t, outputRoot, h.Executor().OutputDir(), "one step writes straight to the output root")
	assert.NoDirExists(t, filepath.Join(hotRoot, "solo", "step_001"), "no intermediate folder for one step")
}

func TestRegisterAllDuplicateFolder(t *testing.T) {
	registrar, _, _, _ := newTestRegistrar(t)

	envs := []config.Environment{
		{Name: "dup", InPattern: []string{"*"}, Trigger: config.NewTrigger("true")},
		{Name: "dup", InPattern: []string{"*"}, Trigger: config.NewTrigger("false")},
	}
	err := registrar.RegisterAll(context.Background(), envs)
	require.Error(t, err, "two environments cannot share a folder")
	assert.Contains(t, err.Error(), "already watched", "error should point at the collision")
}
