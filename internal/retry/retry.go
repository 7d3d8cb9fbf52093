// Package retry provides a reusable retry policy so call sites do not
// hand-roll their own attempt loops.
package retry

import (
	"context"
	"time"
)

// Backoff returns how long to wait before the next attempt. attempt is
// 1-based (the attempt that just failed); err is the failure it produced.
type Backoff func(attempt int, err error) time.Duration

// Policy drives an attempt loop: up to MaxAttempts calls, waiting
// Backoff between them, stopping early when Retryable rejects the error.
type Policy struct {
	MaxAttempts int
	Backoff     Backoff
	Retryable   func(error) bool
}

// Do runs op until it succeeds, exhausts MaxAttempts, the error is not
// retryable, or ctx is done. The last error is returned.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff(attempt, err)
		}
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

// Fixed waits the same duration between every attempt.
func Fixed(d time.Duration) Backoff {
	return func(int, error) time.Duration { return d }
}

// Exponential doubles the base delay per attempt, capped at max.
func Exponential(base, max time.Duration) Backoff {
	return func(attempt int, _ error) time.Duration {
		d := base << (attempt - 1)
		if max > 0 && d > max {
			return max
		}
		return d
	}
}
