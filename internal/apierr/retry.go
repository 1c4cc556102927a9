package apierr

import (
	"context"
	"fmt"
	"time"
)

// Backoff describes an exponential retry schedule: the first retry
// waits Base, each following one doubles the wait up to Cap.
type Backoff struct {
	Retries int           // retry attempts after the initial try
	Base    time.Duration // wait before the first retry
	Cap     time.Duration // ceiling on the doubled waits
}

// delay returns the wait before retry number n (1-based).
func (b Backoff) delay(n int) time.Duration {
	base := b.Base
	if base <= 0 {
		base = time.Millisecond
	}
	d := base << (n - 1)
	if b.Cap > 0 && d > b.Cap {
		d = b.Cap
	}
	return d
}

// Do runs fn until it succeeds, returns an error retryable rejects,
// ctx ends, or the retry budget is spent. The schedule waits are
// context-aware.
func Do[T any](ctx context.Context, b Backoff, retryable func(error) bool, fn func() (T, error)) (T, error) {
	var zero T

	retries := b.Retries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !retryable(err) {
			return zero, err
		}
		lastErr = err

		if attempt == retries {
			return zero, fmt.Errorf("max retries (%d) exceeded: %w", retries, lastErr)
		}
		if err := sleep(ctx, b.delay(attempt+1)); err != nil {
			return zero, err
		}
	}
}

// sleep blocks for d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
