// Package retry repeats remote calls with linear backoff.
package retry

import (
	"context"
	"time"
)

// Policy describes how often a call is attempted and how long to wait
// between attempts. The wait before attempt n+1 is BaseDelay*n.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Delay is the wait after the given failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(attempt)
}

// Do runs op until it succeeds, returns an error retryable rejects, the
// attempts run out or ctx ends. The last error from op is returned. onRetry,
// when set, is called before each wait.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error), retryable func(error) bool, onRetry func(attempt int, err error)) (T, error) {
	var (
		result T
		err    error
	)
	maxAttempts := p.attempts()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err = op(ctx)
		if err == nil {
			return result, nil
		}
		if attempt == maxAttempts || retryable == nil || !retryable(err) {
			return result, err
		}
		if onRetry != nil {
			onRetry(attempt, err)
		}
		if !wait(ctx, p.Delay(attempt)) {
			return result, err
		}
	}
	return result, err
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
