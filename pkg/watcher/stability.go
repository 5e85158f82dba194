package watcher

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultSettleInterval is the pause between two size samples when waiting
// for a file to finish arriving.
const DefaultSettleInterval = 200 * time.Millisecond

// ⏳ WaitUntilStable blocks until the size of the file at path is unchanged
// across two successive samples taken interval apart. There is no upper
// bound: a file that never stops growing blocks forever. A stat failure
// (typically the file vanishing mid-check) is returned as an error for the
// caller to log and abandon the path.
func WaitUntilStable(ctx context.Context, path string, interval time.Duration) error {
	logger := zerolog.Ctx(ctx)

	lastSize := int64(-1)
	for {
		info, err := os.Stat(path)
		if err != nil {
			return errors.Errorf("sizing %s: %w", path, err)
		}
		if info.Size() == lastSize {
			logger.Debug().Str("file", path).Int64("size", lastSize).Msg("file modification finished")
			return nil
		}
		lastSize = info.Size()

		select {
		case <-ctx.Done():
			return errors.Errorf("waiting for %s to settle: %w", path, ctx.Err())
		case <-time.After(interval):
		}
	}
}
