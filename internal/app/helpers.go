package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/repository"
)

const (
	dbAttemptTimeout = 3 * time.Second
	dbMaxBackoff     = 10 * time.Second
)

var newPool = repository.NewPool

// connectDbWithRetry opens the pool, backing off from delay and doubling up to
// dbMaxBackoff between failed attempts. Cancelling ctx aborts the wait.
func connectDbWithRetry(
	ctx context.Context,
	logger logx.Logger,
	dsn string,
	retries int,
	delay time.Duration,
) (*pgxpool.Pool, error) {
	if retries < 1 {
		retries = 1
	}
	backoff := delay
	var lastErr error
	for attempt := 1; ; attempt++ {
		pool, err := openPool(ctx, dsn)
		if err == nil {
			logger.Info("db connected", logx.Int("attempt", attempt))
			return pool, nil
		}
		lastErr = err
		if attempt == retries {
			break
		}
		logger.Warn("db not ready, retrying",
			logx.Int("attempt", attempt),
			logx.Int("of", retries),
			logx.String("backoff", backoff.String()),
			logx.Err(err),
		)
		if err := sleepCtx(ctx, backoff); err != nil {
			return nil, err
		}
		backoff = min(backoff*2, dbMaxBackoff)
	}
	return nil, fmt.Errorf("db unreachable after %d attempts: %w", retries, lastErr)
}

func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbAttemptTimeout)
	defer cancel()
	return newPool(ctx, dsn)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
