package renamify

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ProviderError classifies a vision-backend failure. Transient errors
// (timeouts, rate limits, 5xx) are retried with backoff; permanent errors
// (auth, invalid request) fail immediately.
type ProviderError struct {
	StatusCode int
	Transient  bool
	Err        error
}

func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider: %s error (status %d): %v", kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider: %s error: %v", kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsTransient reports whether err should be retried. Unknown error types are
// treated as transient so that one-off network hiccups get their retries.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	return true
}

// RetryPolicy is a small composable retry description: attempt cap,
// exponential backoff bounds, and jitter. Independent from any particular
// backend so it can be tested in isolation.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      float64 // fraction of the delay randomized, in [0, 1]

	// sleep is swappable in tests; nil means a context-aware real sleep.
	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy matches the acquisition protocol: a few attempts with
// short exponential backoff and mild jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    5 * time.Second,
		Jitter:      0.2,
	}
}

// Delay returns the backoff before the given retry (attempt is 1-based; the
// delay precedes attempt+1). Exponential doubling capped at MaxDelay, with
// ±Jitter randomization.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if d > p.MaxDelay || d <= 0 {
		d = p.MaxDelay
	}
	if p.Jitter > 0 {
		spread := float64(d) * p.Jitter
		d = time.Duration(float64(d) - spread/2 + rand.Float64()*spread)
	}
	return d
}

// Do runs fn up to MaxAttempts times, sleeping between attempts. It stops
// early on permanent errors or context cancellation and returns the last
// error observed.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var last error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		last = fn(ctx)
		if last == nil {
			return nil
		}
		if !IsTransient(last) {
			return last
		}
		if attempt == p.MaxAttempts {
			break
		}
		if err := sleep(ctx, p.Delay(attempt)); err != nil {
			return err
		}
	}
	return last
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
