package ratelimit

import "time"

// Decision is the outcome of one limiter check.
type Decision struct {
	Allowed bool
	// RetryAfter is how long the key waits for its next token. Zero when allowed.
	RetryAfter time.Duration
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(key string) Decision
}

// Clock returns the current time.
type Clock func() time.Time
