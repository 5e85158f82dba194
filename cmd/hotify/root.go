package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/hotify/pkg/config"
	"github.com/walteh/hotify/pkg/log"
	"github.com/walteh/hotify/pkg/watcher"
)

var (
	// Flags
	configFile  string
	debug       bool
	cleanOnExit bool
	initialRun  bool
)

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotify [BASE_PATH]",
		Short: "Create hot folder environments driven by a configuration file",
		Long: `Hotify turns a directory tree into a set of hot folders: dropping a file
into a named subfolder runs the configured command (or pipeline of commands)
for that environment, with results landing in the output folder.

BASE_PATH is where the hot folder and output folder are created; it defaults
to the current directory and must already exist.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          run,
	}

	cmd.Flags().StringVar(&configFile, "config", "hotify.yml", "config file path")
	cmd.Flags().BoolVarP(&cleanOnExit, "clean", "c", false, "clean: remove the hot folder on exit")
	cmd.Flags().BoolVar(&initialRun, "initial-run", true, "replay files already present when the watch starts")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	// Set up logger
	logLevel := zerolog.InfoLevel
	if debug {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(logLevel).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	console := log.New(os.Stdout, logger)

	// Resolve base path
	basePath := "."
	if len(args) == 1 {
		basePath = args[0]
	}
	basePath, err := filepath.Abs(basePath)
	if err != nil {
		return errors.Errorf("resolving base path: %w", err)
	}
	if info, err := os.Stat(basePath); err != nil || !info.IsDir() {
		return errors.Errorf("base path %s is not an existing directory", basePath)
	}

	// Load config (the only fatal error class in hotify)
	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		console.Errorf("loading config: %v", err)
		return err
	}

	// Create the hot folder root and the shared output root
	hotRoot := filepath.Join(basePath, cfg.HotFolderName)
	outputRoot := filepath.Join(basePath, cfg.OutputFolderName)
	if err := os.MkdirAll(hotRoot, 0o755); err != nil {
		return errors.Errorf("creating hot folder: %w", err)
	}
	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return errors.Errorf("creating output folder: %w", err)
	}

	console.Header("watching " + hotRoot)

	// Wire environments
	observer, err := watcher.NewObserver(watcher.ObserverOptions{
		HotRoot: hotRoot,
		Console: console,
	})
	if err != nil {
		return errors.Errorf("creating observer: %w", err)
	}

	registrar, err := watcher.NewRegistrar(watcher.RegistrarOptions{
		Observer:   observer,
		HotRoot:    hotRoot,
		OutputRoot: outputRoot,
		Delay:      cfg.MultipleFilesDelayDuration(),
		Console:    console,
	})
	if err != nil {
		return errors.Errorf("creating registrar: %w", err)
	}
	if err := registrar.RegisterAll(ctx, cfg.Environments); err != nil {
		console.Errorf("registering environments: %v", err)
		return err
	}

	// Observe until SIGINT/SIGTERM
	if err := observer.Observe(ctx, watcher.ObserveOptions{
		InitialRun:  initialRun,
		CleanOnExit: cleanOnExit,
	}); err != nil {
		console.Errorf("observing: %v", err)
		return err
	}

	console.Success("hotify stopped")
	return nil
}
