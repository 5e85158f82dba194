package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/hotify/pkg/batch"
	"github.com/walteh/hotify/pkg/log"
	"github.com/walteh/hotify/pkg/trigger"
)

// 🔧 HandlerOptions contains configuration for a folder event handler
type HandlerOptions struct {
	// Env is the owning environment's name, used for logging
	Env string
	// Dir is the watched directory
	Dir string
	// Patterns are the glob patterns accepted input names must match
	Patterns []string
	// Executor runs this folder's trigger step
	Executor *trigger.Executor
	// Delay is the quiescence required before a batch releases
	Delay time.Duration
	// Settle overrides the stability sampling interval (defaults to
	// DefaultSettleInterval)
	Settle time.Duration
	// Console receives operator-facing event and trigger lines
	Console *log.Logger
}

// 📁 Handler reacts to create/modify events inside one watched folder. A
// qualifying file is waited on until its size settles, then either executed
// immediately (single-file triggers) or parked in the pending set until the
// whole batch goes quiet (multi-file triggers).
type Handler struct {
	env      string
	dir      string
	patterns []string
	executor *trigger.Executor
	settle   time.Duration
	console  *log.Logger

	// pending and debouncer are only set for multi-file triggers
	pending   *batch.Set
	debouncer *batch.Debouncer
}

// 🏭 NewHandler creates a handler for one watched folder
func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Dir == "" {
		return nil, errors.Errorf("dir is required")
	}
	if len(opts.Patterns) == 0 {
		return nil, errors.Errorf("patterns are required")
	}
	if opts.Executor == nil {
		return nil, errors.Errorf("executor is required")
	}
	if opts.Console == nil {
		return nil, errors.Errorf("console logger is required")
	}

	settle := opts.Settle
	if settle <= 0 {
		settle = DefaultSettleInterval
	}

	h := &Handler{
		env:      opts.Env,
		dir:      opts.Dir,
		patterns: opts.Patterns,
		executor: opts.Executor,
		settle:   settle,
		console:  opts.Console,
	}

	if opts.Executor.Multi() {
		if opts.Delay <= 0 {
			return nil, errors.Errorf("delay is required for multi-file triggers")
		}
		h.pending = batch.NewSet()
		debouncer, err := batch.NewDebouncer(batch.DebouncerOptions{
			Set:   h.pending,
			Delay: opts.Delay,
			Fire:  h.fireBatch,
		})
		if err != nil {
			return nil, errors.Errorf("creating debouncer: %w", err)
		}
		h.debouncer = debouncer
	}

	return h, nil
}

// 📂 Dir returns the watched directory
func (h *Handler) Dir() string {
	return h.dir
}

// 📝 Patterns returns the accepted input glob patterns
func (h *Handler) Patterns() []string {
	return h.patterns
}

// ⚡ Executor returns the trigger executor bound to this folder
func (h *Handler) Executor() *trigger.Executor {
	return h.executor
}

// ▶️ Start launches the handler's debounce loop, if it has one. It returns
// immediately; the loop runs until ctx is canceled.
func (h *Handler) Start(ctx context.Context) {
	if h.debouncer != nil {
		go h.debouncer.Run(ctx)
	}
}

// 🔍 Matches reports whether the file's base name matches any accepted
// pattern. Matching is case-insensitive and the ignore set is empty.
func (h *Handler) Matches(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, pattern := range h.patterns {
		if ok, err := doublestar.Match(strings.ToLower(pattern), name); err == nil && ok {
			return true
		}
	}
	return false
}

// 🎬 HandleEvent processes one create/modify event. Directories and
// non-matching names are ignored. Create and modify differ only in the
// logged event name; both wait for the file to settle and then dispatch the
// same way. Every per-file error is contained here: log, abandon the path,
// keep watching.
func (h *Handler) HandleEvent(ctx context.Context, op fsnotify.Op, path string) {
	logger := zerolog.Ctx(ctx)

	absPath, err := filepath.Abs(path)
	if err != nil {
		logger.Warn().Err(err).Str("file", path).Msg("resolving event path, skipping")
		return
	}

	info, err := os.Stat(absPath)
	if err != nil {
		// Gone already (temp files, fast renames). Nothing to process.
		logger.Debug().Err(err).Str("file", absPath).Msg("event file not statable, skipping")
		return
	}
	if info.IsDir() {
		return
	}
	if !h.Matches(absPath) {
		return
	}

	event := "modified"
	if op.Has(fsnotify.Create) {
		event = "created"
	}
	h.console.LogFileEvent(log.FileEvent{Env: h.env, Event: event, Path: absPath})

	if err := WaitUntilStable(ctx, absPath, h.settle); err != nil {
		logger.Warn().Err(err).Str("file", absPath).Msg("file vanished while settling, skipping")
		return
	}

	if h.pending != nil {
		if h.pending.Put(absPath) {
			logger.Debug().Str("file", absPath).Int("pending", h.pending.Len()).Msg("file added to batch")
		}
		return
	}

	err = h.executor.ExecuteSingle(ctx, absPath)
	h.console.LogTriggerResult(log.TriggerResult{
		Env:     h.env,
		Command: h.executor.Template(),
		Files:   1,
		Err:     err,
	})
	// TODO(dr.methodical): 🧹 Clean input files after a successful trigger
}

// fireBatch hands a drained batch to the executor. Invoked from the
// debounce loop.
func (h *Handler) fireBatch(ctx context.Context, paths []string) {
	err := h.executor.ExecuteBatch(ctx, paths)
	h.console.LogTriggerResult(log.TriggerResult{
		Env:     h.env,
		Command: h.executor.Template(),
		Batch:   true,
		Files:   len(paths),
		Err:     err,
	})
}
