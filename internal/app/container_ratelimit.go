package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/http/middleware/ratelimit"
	"courier-dispatch/internal/logx"
)

type limiterIn struct {
	dig.In
	Config *config.Config
	Clock  ratelimit.Clock
	Logger logx.Logger
}

// newRateLimiter builds the per-caller token bucket, or a limiter that admits
// everything when rate limiting is switched off.
func newRateLimiter(in limiterIn) ratelimit.Limiter {
	rl := in.Config.RateLimit
	if !rl.Enabled {
		in.Logger.Info("rate limiting disabled")
		return ratelimit.NopLimiter{}
	}
	in.Logger.Info("rate limiting enabled",
		logx.Any("rate", rl.Rate),
		logx.Int("burst", rl.Burst),
		logx.Int("max_buckets", rl.MaxBuckets),
	)
	return ratelimit.NewTokenBucketLimiter(in.Clock, ratelimit.Config{
		Rate:       rl.Rate,
		Burst:      rl.Burst,
		TTL:        rl.TTL,
		MaxBuckets: rl.MaxBuckets,
	})
}

func newRateLimitClock() ratelimit.Clock { return time.Now }

type rateLimitIn struct {
	dig.In
	Logger   logx.Logger
	Limiter  ratelimit.Limiter
	Rejected prometheus.Counter `name:"rate_limit_exceeded_total"`
}

func newRateLimitMiddleware(in rateLimitIn) *ratelimit.Middleware {
	return ratelimit.New(in.Logger, in.Rejected, in.Limiter)
}
