package llm

import (
	"context"
	"time"
)

// retry runs fn up to attempts times with a fixed delay between attempts,
// honoring context cancellation during the wait. It returns nil on the first
// success, the context error when cancelled while waiting, and otherwise the
// last error from fn.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}

		// A dead context cannot succeed on retry.
		if ctx.Err() != nil {
			return lastErr
		}
	}

	return lastErr
}
