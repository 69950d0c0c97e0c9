package services

import (
	"context"
	"time"
)

// RetryPolicy bounds how often a transient failure is reattempted.
type RetryPolicy struct {
	// Attempts is the total number of tries including the first one.
	Attempts int
	// Delay is the backoff unit; attempt n waits n*Delay before retrying.
	Delay time.Duration
}

// DefaultRetryPolicy retries twice after the initial attempt.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Delay: 500 * time.Millisecond}
}

// Retry invokes fn until it succeeds, the error is not retryable, the policy
// is exhausted, or the context is cancelled. The last error is returned.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !Retryable(lastErr) || attempt == attempts {
			return lastErr
		}
		wait := time.Duration(attempt) * policy.Delay
		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
