package ratelimit

import (
	"sync"
	"time"
)

// Config stores TokenBucketLimiter settings.
type Config struct {
	Rate       float64       // tokens per second
	Burst      int           // bucket capacity
	TTL        time.Duration // idle buckets older than this are dropped; 0 keeps them
	MaxBuckets int           // 0 means unbounded
}

// TokenBucketLimiter keeps one token bucket per key. When MaxBuckets is reached
// the least recently used bucket is evicted so new clients are never locked out.
type TokenBucketLimiter struct {
	cfg        Config
	now        Clock
	sweepEvery time.Duration

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// NewTokenBucketLimiter creates a limiter. A nil clock uses time.Now.
func NewTokenBucketLimiter(clock Clock, cfg Config) *TokenBucketLimiter {
	if clock == nil {
		clock = time.Now
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.MaxBuckets < 0 {
		cfg.MaxBuckets = 0
	}
	sweepEvery := time.Minute
	if half := cfg.TTL / 2; half > sweepEvery {
		sweepEvery = half
	}
	return &TokenBucketLimiter{
		cfg:        cfg,
		now:        clock,
		sweepEvery: sweepEvery,
		buckets:    make(map[string]*bucket),
	}
}

// Allow takes one token from the key's bucket.
func (l *TokenBucketLimiter) Allow(key string) Decision {
	now := l.now()
	burst := float64(l.cfg.Burst)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		if l.cfg.MaxBuckets > 0 && len(l.buckets) >= l.cfg.MaxBuckets {
			l.evictOldest()
		}
		b = &bucket{tokens: burst, seen: now}
		l.buckets[key] = b
	}

	if dt := now.Sub(b.seen); dt > 0 {
		b.tokens = min(burst, b.tokens+dt.Seconds()*l.cfg.Rate)
		b.seen = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return Decision{Allowed: true}
	}
	wait := time.Duration((1 - b.tokens) / l.cfg.Rate * float64(time.Second))
	return Decision{RetryAfter: wait}
}

// Len returns the number of live buckets.
func (l *TokenBucketLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *TokenBucketLimiter) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, b := range l.buckets {
		if oldestKey == "" || b.seen.Before(oldest) {
			oldestKey, oldest = k, b.seen
		}
	}
	delete(l.buckets, oldestKey)
}

// sweep must be called with mu held.
func (l *TokenBucketLimiter) sweep(now time.Time) {
	if l.cfg.TTL <= 0 {
		return
	}
	if !l.lastSweep.IsZero() && now.Sub(l.lastSweep) < l.sweepEvery {
		return
	}
	l.lastSweep = now
	for k, b := range l.buckets {
		if now.Sub(b.seen) > l.cfg.TTL {
			delete(l.buckets, k)
		}
	}
}
