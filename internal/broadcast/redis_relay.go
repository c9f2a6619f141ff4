package broadcast

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"courier-dispatch/internal/logx"
)

const relayPayload = "changed"

// RedisRelay carries change signals over a Redis pub/sub channel so every
// instance behind a load balancer refreshes its own observers.
type RedisRelay struct {
	client  redis.UniversalClient
	channel string
	logger  logx.Logger
}

// NewRedisRelay creates a relay on the given channel.
func NewRedisRelay(client redis.UniversalClient, channel string, logger logx.Logger) *RedisRelay {
	if logger == nil {
		logger = logx.Nop()
	}
	return &RedisRelay{client: client, channel: channel, logger: logger}
}

// Publish sends one change signal.
func (r *RedisRelay) Publish(ctx context.Context) error {
	if err := r.client.Publish(ctx, r.channel, relayPayload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", r.channel, err)
	}
	return nil
}

// Subscribe listens on the channel until ctx is done.
func (r *RedisRelay) Subscribe(ctx context.Context, onSignal func()) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer func() {
		if err := sub.Close(); err != nil {
			r.logger.Warn("relay unsubscribe failed", logx.Err(err))
		}
	}()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			onSignal()
		}
	}
}
