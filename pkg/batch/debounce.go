package batch

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultPoll is how often the debounce loop re-evaluates the pending set.
// The quiescence predicate depends on wall-clock time, so it has to be
// polled: no filesystem event fires when a file merely stays unchanged.
const DefaultPoll = 1 * time.Second

// 🔧 DebouncerOptions contains configuration for a Debouncer
type DebouncerOptions struct {
	// Set is the pending set to watch
	Set *Set
	// Delay is the quiescence every member must reach before release
	Delay time.Duration
	// Poll overrides the loop interval (defaults to DefaultPoll)
	Poll time.Duration
	// Fire receives each drained batch
	Fire func(ctx context.Context, paths []string)
}

// ⏲️ Debouncer watches one pending set and releases the whole batch once
// every member has been left alone for the configured delay.
type Debouncer struct {
	set   *Set
	delay time.Duration
	poll  time.Duration
	fire  func(ctx context.Context, paths []string)
}

// 🏭 NewDebouncer creates a debouncer with the given options
func NewDebouncer(opts DebouncerOptions) (*Debouncer, error) {
	if opts.Set == nil {
		return nil, errors.Errorf("set is required")
	}
	if opts.Delay <= 0 {
		return nil, errors.Errorf("delay must be positive")
	}
	if opts.Fire == nil {
		return nil, errors.Errorf("fire callback is required")
	}
	poll := opts.Poll
	if poll <= 0 {
		poll = DefaultPoll
	}
	return &Debouncer{
		set:   opts.Set,
		delay: opts.Delay,
		poll:  poll,
		fire:  opts.Fire,
	}, nil
}

// 🔁 Run is the perpetual debounce loop. Each iteration it checks whether
// every pending path has been quiescent for the delay and, if so, drains the
// set and fires the batch. It returns only when ctx is canceled; a batch
// already handed to Fire is never interrupted.
func (d *Debouncer) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx)

	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			batch := d.set.DrainAllIf(func(path string) Verdict {
				return d.judge(logger, path)
			})
			if len(batch) > 0 {
				logger.Debug().Int("files", len(batch)).Msg("releasing batch")
				d.fire(ctx, batch)
			}
		}
	}
}

// judge classifies one pending path. A stat failure means the file vanished
// while pending: it is dropped so one bad path cannot wedge the batch
// forever.
func (d *Debouncer) judge(logger *zerolog.Logger, path string) Verdict {
	info, err := os.Stat(path)
	if err != nil {
		logger.Warn().Err(err).Str("file", path).Msg("pending file vanished, dropping from batch")
		return Gone
	}
	if time.Since(info.ModTime()) > d.delay {
		return Stable
	}
	return Waiting
}
