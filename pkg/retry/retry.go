package retry

import (
	"context"
	"fmt"
	"time"
)

// BackoffFunc computes the sleep before the next attempt. attempt is
// 1-based and counts the attempt that just failed.
type BackoffFunc func(attempt int, base time.Duration) time.Duration

// Linear grows the delay by the base duration on every failed attempt.
func Linear(attempt int, base time.Duration) time.Duration {
	return time.Duration(attempt) * base
}

// Fixed waits the base duration regardless of attempt count.
func Fixed(_ int, base time.Duration) time.Duration {
	return base
}

// Policy describes how a single operation is retried. The zero value is
// not usable; use New or fill all fields.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Backoff     BackoffFunc
}

// New returns a linear-backoff policy.
func New(maxAttempts int, baseDelay time.Duration) Policy {
	return Policy{MaxAttempts: maxAttempts, BaseDelay: baseDelay, Backoff: Linear}
}

// Do runs fn until it succeeds, the attempts are exhausted, or the context
// is cancelled. The returned error wraps the last failure.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.Backoff
	if backoff == nil {
		backoff = Linear
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err

			if attempt == attempts {
				return fmt.Errorf("failed after %d attempts: %w", attempts, err)
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff(attempt, p.BaseDelay)):
				continue
			}
		}
		return nil
	}

	return lastErr
}
