package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"parcel-delivery/internal/logx"
	"parcel-delivery/internal/queue"
	"parcel-delivery/internal/repository"
)

const (
	dbAttemptTimeout = 3 * time.Second
	dbMaxDelay       = 10 * time.Second
)

var newPool = repository.NewPool

// connectDbWithRetry dials postgres up to retries times, doubling delay between
// attempts up to dbMaxDelay.
func connectDbWithRetry(ctx context.Context, logger logx.Logger, dsn string, retries int, delay time.Duration) (*pgxpool.Pool, error) {
	policy := queue.RetryPolicy{MaxAttempts: retries, Backoff: delay, MaxBackoff: dbMaxDelay}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, dbAttemptTimeout)
		pool, err := newPool(attemptCtx, dsn)
		cancel()
		if err == nil {
			logger.Info("db connected", logx.Int("attempt", attempt))
			return pool, nil
		}
		lastErr = err

		if !policy.ShouldRetry(attempt, err) {
			break
		}
		wait := policy.Delay(attempt)
		logger.Warn("db connect failed",
			logx.Int("attempt", attempt),
			logx.Int("retries", retries),
			logx.Duration("retry_in", wait),
			logx.Err(err),
		)
		if !queue.SleepWithContext(ctx, wait) {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("db connect failed after %d attempts: %w", retries, lastErr)
}
