package retry

import (
	"context"
	"errors"
	"time"
)

// ErrRetry marks an error as retryable.
//
// When a function passed to Do returns an error wrapping ErrRetry,
// the call is attempted again (until the policy's attempts run out).
// Any other error stops retrying at once.
var ErrRetry = errors.New("retry")

// Backoff is a (blocking) function returning when to retry.
//
// # Args
//
// - context: context. If context is canceled, Backoff should return ctx.Err().
//
// # Returns
//
// - error: nil if the next attempt may start, non-nil if not.
type Backoff func(context.Context) error

// StaticBackoff returns a Backoff function that waits for a fixed interval.
var StaticBackoff = func(interval time.Duration) Backoff {
	return ExponentialBackoff(interval, 1)
}

// NoBackoff returns a Backoff function which does not wait at all.
//
// Attempts follow each other immediately (unless the context is done).
func NoBackoff() Backoff {
	return func(ctx context.Context) error {
		return ctx.Err()
	}
}

// ExponentialBackoff returns a Backoff function that waits with exponential backoff.
//
// # Args
//
// - initialInterval: initial interval.
//
// - r: multiplier of interval.
//
// # Returns
//
// Backoff function.
// For N-th call, it waits for `initialInterval * r^N` or context to be done.
var ExponentialBackoff = func(initialInterval time.Duration, r float64) Backoff {
	interval := initialInterval
	return func(ctx context.Context) error {
		timer := time.NewTimer(interval)
		defer func() {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			i := float64(interval) * r
			interval = time.Duration(int64(i))
			return nil
		}
	}
}

// Policy is a bounded retry policy: how many attempts in total, and
// how to wait between them.
//
// The zero value retries nothing (single attempt, no wait).
type Policy struct {
	// MaxAttempts is the total number of attempts, first try included.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// Backoff decides the wait before each re-attempt.
	// nil means no wait.
	Backoff Backoff
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Do calls f until it succeeds, it fails with a non-retryable error,
// or the policy's attempts are exhausted.
//
// # Args
//
// - ctx: context
//
// - f: function to be called. Returning an error wrapping ErrRetry requests
// another attempt; any other error is final.
//
// # Returns
//
// - T: last return value of f
//
// - error: error from the last attempt of f, or ctx.Err() when the context
// is done during backoff. When attempts run out, the last (retryable) error
// is returned as is.
func Do[T any](ctx context.Context, p Policy, f func() (T, error)) (T, error) {
	backoff := p.Backoff
	if backoff == nil {
		backoff = NoBackoff()
	}

	last := *new(T)
	var lastErr error
	for attempt := 0; attempt < p.attempts(); attempt++ {
		if attempt != 0 {
			if err := backoff(ctx); err != nil {
				return last, err
			}
		}

		last, lastErr = f()
		if lastErr == nil {
			return last, nil
		}
		if !errors.Is(lastErr, ErrRetry) {
			return last, lastErr
		}
	}
	return last, lastErr
}
