package queue

import (
	"context"
	"time"
)

// RetryPolicy decides whether and when brokers retry a failed job.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration
}

// DefaultRetryPolicy makes three attempts with 1s, 2s backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: time.Second, MaxBackoff: 30 * time.Second}
}

// ShouldRetry reports whether another attempt follows a failure of attempt
// (1-based) with err.
func (p RetryPolicy) ShouldRetry(attempt int, err error) bool {
	if IsPermanent(err) {
		return false
	}
	return attempt < p.MaxAttempts
}

// Delay returns the wait before the attempt following attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	return backoff(p.Backoff, p.MaxBackoff, attempt)
}

// backoff doubles base on each attempt, capped at max
func backoff(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 32 {
		return max
	}
	d := base << (attempt - 1)
	if max > 0 && (d > max || d <= 0) {
		return max
	}
	return d
}

// SleepWithContext waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func SleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
