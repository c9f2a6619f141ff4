package ratelimit

// NopLimiter lets every request through. Used when rate limiting is disabled.
type NopLimiter struct{}

// Allow always allows.
func (NopLimiter) Allow(string) Decision { return Decision{Allowed: true} }
