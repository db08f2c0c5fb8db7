package engine

import (
	"context"
	"log/slog"
	"time"
)

// RetryConfig controls retry behavior for remote API calls.
// Delays[n] is the wait before attempt n+2 (fixed schedule, not exponential).
type RetryConfig struct {
	Attempts int
	Delays   []time.Duration
}

// DefaultRetryConfig matches the upstream API's tolerance: three attempts,
// 2s then 4s between them.
var DefaultRetryConfig = RetryConfig{
	Attempts: 3,
	Delays:   []time.Duration{2 * time.Second, 4 * time.Second},
}

// RetryAPI retries fn up to rc.Attempts times with the fixed delay schedule.
// reconnect (optional) runs before every retry so a stuck connection does not
// poison the remaining attempts. onQuota (optional) fires when the API
// reports quota exhaustion; that error is never retried.
// Non-retryable errors return immediately; the call site decides whether an
// empty result is fatal or merely shrinks the pool.
func RetryAPI[T any](ctx context.Context, rc RetryConfig, reconnect, onQuota func(), fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < rc.Attempts; attempt++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if attempt > 0 && reconnect != nil {
			reconnect()
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if Kind(err) == KindQuotaExceeded {
			if onQuota != nil {
				onQuota()
			}
			return zero, err
		}
		if !IsRetryable(err) {
			return zero, err
		}

		if attempt < rc.Attempts-1 {
			wait := time.Duration(0)
			if attempt < len(rc.Delays) {
				wait = rc.Delays[attempt]
			}
			slog.Debug("retrying", slog.Int("attempt", attempt+1), slog.Duration("wait", wait), slog.Any("error", err))
			IncrAPIRetries()
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}
	return zero, lastErr
}
