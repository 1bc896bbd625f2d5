package fetch

import (
	"context"
	"fmt"
	"time"
)

// Policy controls how many times an operation is attempted and how long
// to wait between attempts. The delay is fixed, not exponential.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// FetchError reports that every attempt failed. Cause holds the error
// from the last attempt.
type FetchError struct {
	Attempts int
	Cause    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Do runs op until it succeeds or MaxAttempts attempts have failed.
// The wait between attempts is interrupted by context cancellation, in
// which case the context error becomes the final cause.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op(ctx, attempt)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return &FetchError{Attempts: attempt, Cause: ctx.Err()}
		case <-time.After(p.Delay):
		}
	}
	return &FetchError{Attempts: attempts, Cause: lastErr}
}
