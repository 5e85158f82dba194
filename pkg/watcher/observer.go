package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/hotify/pkg/log"
)

// relevantOps are the filesystem operations that feed handlers. Chmod is
// included because the initial sweep replays pre-existing files by updating
// their timestamps, which surfaces as an attribute change.
const relevantOps = fsnotify.Create | fsnotify.Write | fsnotify.Chmod

// 🔧 ObserverOptions contains configuration for the top-level observer
type ObserverOptions struct {
	// HotRoot is the hot folder root all watched folders live under
	HotRoot string
	// Console receives operator-facing lines
	Console *log.Logger
}

// 🔭 Observer owns the underlying filesystem notification mechanism and the
// set of registered folder handlers. It routes each event to the handler
// bound to the event's parent directory.
type Observer struct {
	fsw     *fsnotify.Watcher
	hotRoot string
	console *log.Logger

	mu       sync.Mutex
	handlers map[string]*Handler // watched dir -> handler
}

// 🏭 NewObserver creates an observer over a fresh fsnotify watcher
func NewObserver(opts ObserverOptions) (*Observer, error) {
	if opts.HotRoot == "" {
		return nil, errors.Errorf("hot root is required")
	}
	if opts.Console == nil {
		return nil, errors.Errorf("console logger is required")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Observer{
		fsw:      fsw,
		hotRoot:  opts.HotRoot,
		console:  opts.Console,
		handlers: make(map[string]*Handler),
	}, nil
}

// ➕ Schedule binds a handler to its folder and starts watching it,
// non-recursively. At most one handler per folder.
func (o *Observer) Schedule(h *Handler) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.handlers[h.Dir()]; ok {
		return errors.Errorf("folder already watched: %s", h.Dir())
	}
	if err := o.fsw.Add(h.Dir()); err != nil {
		return errors.Errorf("watching %s: %w", h.Dir(), err)
	}
	o.handlers[h.Dir()] = h
	return nil
}

// 🔍 HandlerFor returns the handler bound to dir, or nil
func (o *Observer) HandlerFor(dir string) *Handler {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.handlers[dir]
}

// 🔧 ObserveOptions controls one observation run
type ObserveOptions struct {
	// InitialRun replays pre-existing files through the event path
	InitialRun bool
	// CleanOnExit removes the whole hot root on shutdown
	CleanOnExit bool
}

// 👁️ Observe starts all debounce loops and the event dispatch loop, then
// blocks until ctx is canceled. On the way out it stops the notification
// mechanism and, when asked to, removes the hot root. In-flight triggers
// and their goroutines are left to finish on their own.
func (o *Observer) Observe(ctx context.Context, opts ObserveOptions) error {
	logger := zerolog.Ctx(ctx)

	o.mu.Lock()
	for _, h := range o.handlers {
		h.Start(ctx)
	}
	o.mu.Unlock()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return o.dispatchLoop(groupCtx)
	})

	if opts.InitialRun {
		if err := o.initialSweep(ctx); err != nil {
			// Pre-existing files are best effort; the watch itself is up.
			logger.Warn().Err(err).Msg("initial sweep incomplete")
		}
	}

	err := group.Wait()

	if closeErr := o.fsw.Close(); closeErr != nil {
		logger.Warn().Err(closeErr).Msg("closing fsnotify watcher")
	}

	if opts.CleanOnExit {
		o.console.Infof("cleaning hot folder %s", o.hotRoot)
		if rmErr := os.RemoveAll(o.hotRoot); rmErr != nil {
			return errors.Errorf("cleaning hot folder: %w", rmErr)
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// dispatchLoop routes fsnotify events to folder handlers. Each accepted
// event is processed on its own goroutine, so a handler's stability wait
// never blocks delivery of later events.
func (o *Observer) dispatchLoop(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-o.fsw.Events:
			if !ok {
				return errors.Errorf("event channel closed")
			}
			if event.Op&relevantOps == 0 {
				continue
			}
			h := o.HandlerFor(filepath.Dir(event.Name))
			if h == nil {
				continue
			}
			go h.HandleEvent(ctx, event.Op, event.Name)
		case err, ok := <-o.fsw.Errors:
			if !ok {
				return errors.Errorf("error channel closed")
			}
			// Notification hiccups are not fatal to the watch.
			logger.Warn().Err(err).Msg("fsnotify error")
		}
	}
}

// initialSweep touches every pre-existing file under the hot root, except
// files directly at the root level, so that they replay through the same
// create/modify handling path as fresh arrivals.
func (o *Observer) initialSweep(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	return filepath.WalkDir(o.hotRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Dir(path) == o.hotRoot {
			return nil
		}
		now := time.Now()
		if err := os.Chtimes(path, now, now); err != nil {
			logger.Warn().Err(err).Str("file", path).Msg("touching pre-existing file")
			return nil
		}
		logger.Debug().Str("file", path).Msg("replaying pre-existing file")
		return nil
	})
}
