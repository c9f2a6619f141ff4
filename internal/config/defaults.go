package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "courier_db",
}

var defaultPresence = Presence{
	SweepInterval: time.Minute,
	OfflineAfter:  10 * time.Minute,
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	Rate:       20,
	Burst:      40,
	TTL:        5 * time.Minute,
	MaxBuckets: 10000,
}

var defaultPprof = PprofConfig{
	Enabled: false,
	Addr:    "127.0.0.1:6060",
}

var defaultHub = Hub{
	SendBuffer:   8,
	WriteTimeout: 5 * time.Second,
}

const defaultRedisChannel = "courier-positions:changed"

var defaultLog = Log{
	Level:   "info",
	Backend: LogBackendSlog,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultPresence returns the default presence sweeper settings.
func DefaultPresence() Presence {
	return defaultPresence
}

// DefaultRateLimit returns the default rate limiter settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}

// DefaultHub returns the default broadcast hub settings.
func DefaultHub() Hub {
	return defaultHub
}
