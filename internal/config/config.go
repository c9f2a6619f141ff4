package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Log backends
const (
	LogBackendSlog = "slog"
	LogBackendZap  = "zap"
)

// Config stores service settings.
type Config struct {
	Port      int
	DB        DB
	Presence  Presence
	Kafka     Kafka
	RateLimit RateLimit
	Pprof     PprofConfig
	Auth      Auth
	Redis     Redis
	Hub       Hub
	Log       Log
}

// DB stores PostgreSQL connection settings.
type DB struct {
	Host      string
	Port      string
	User      string
	Pass      string
	Name      string
	Bootstrap bool
}

// DSN builds a pgx connection string.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Presence configures the sweeper that marks silent couriers offline.
// OfflineAfter <= 0 disables it.
type Presence struct {
	SweepInterval time.Duration
	OfflineAfter  time.Duration
}

// Kafka configures the order intake consumer. Empty brokers disable it.
type Kafka struct {
	Brokers []string
	GroupID string
	Topic   string
}

// RateLimit configures the per-client token bucket.
type RateLimit struct {
	Enabled    bool
	Rate       float64
	Burst      int
	TTL        time.Duration
	MaxBuckets int
}

// PprofConfig configures the debug server.
type PprofConfig struct {
	Enabled bool
	Addr    string
	User    string
	Pass    string
}

// Auth configures bearer token verification.
type Auth struct {
	Secret string
}

// Redis configures the cross-instance broadcast relay. Empty Addr disables it.
type Redis struct {
	Addr    string
	Channel string
}

// Hub configures live broadcast connections.
type Hub struct {
	SendBuffer   int
	WriteTimeout time.Duration
}

// Log configures the logger.
type Log struct {
	Level   string
	Backend string
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:      defaultPort,
		DB:        defaultDB,
		Presence:  defaultPresence,
		RateLimit: defaultRateLimit,
		Pprof:     defaultPprof,
		Redis:     Redis{Channel: defaultRedisChannel},
		Hub:       defaultHub,
		Log:       defaultLog,
	}

	var err error
	if cfg.Port, err = envInt("PORT", cfg.Port); err != nil {
		return nil, err
	}
	if err := loadDB(&cfg.DB); err != nil {
		return nil, err
	}
	if err := loadPresence(&cfg.Presence); err != nil {
		return nil, err
	}
	loadKafka(&cfg.Kafka)
	if err := loadRateLimit(&cfg.RateLimit); err != nil {
		return nil, err
	}
	if err := loadPprof(&cfg.Pprof); err != nil {
		return nil, err
	}
	cfg.Auth.Secret = os.Getenv("AUTH_JWT_SECRET")
	cfg.Redis.Addr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.Redis.Channel = envString("REDIS_CHANNEL", cfg.Redis.Channel)
	if err := loadHub(&cfg.Hub); err != nil {
		return nil, err
	}
	cfg.Log.Level = envString("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Backend = strings.ToLower(envString("LOG_BACKEND", cfg.Log.Backend))

	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Hub.SendBuffer <= 0 {
		return fmt.Errorf("invalid HUB_SEND_BUFFER: %d", c.Hub.SendBuffer)
	}
	if c.Hub.WriteTimeout <= 0 {
		return fmt.Errorf("invalid HUB_WRITE_TIMEOUT: %s", c.Hub.WriteTimeout)
	}
	if c.Presence.OfflineAfter > 0 && c.Presence.SweepInterval <= 0 {
		return fmt.Errorf("invalid PRESENCE_SWEEP_INTERVAL: %s", c.Presence.SweepInterval)
	}
	switch c.Log.Backend {
	case LogBackendSlog, LogBackendZap:
	default:
		return fmt.Errorf("invalid LOG_BACKEND: %q", c.Log.Backend)
	}
	return nil
}

func loadDB(db *DB) error {
	db.Host = envString("POSTGRES_HOST", db.Host)
	db.Port = envString("POSTGRES_PORT", db.Port)
	if _, err := strconv.Atoi(db.Port); err != nil {
		return fmt.Errorf("invalid POSTGRES_PORT %q: %w", db.Port, err)
	}
	db.User = envString("POSTGRES_USER", db.User)
	db.Pass = envString("POSTGRES_PASSWORD", db.Pass)
	db.Name = envString("POSTGRES_DB", db.Name)

	var err error
	db.Bootstrap, err = envBool("DB_BOOTSTRAP", db.Bootstrap)
	return err
}

func loadPresence(p *Presence) error {
	var err error
	if p.SweepInterval, err = envDuration("PRESENCE_SWEEP_INTERVAL", p.SweepInterval); err != nil {
		return err
	}
	p.OfflineAfter, err = envDuration("PRESENCE_OFFLINE_AFTER", p.OfflineAfter)
	return err
}

func loadKafka(k *Kafka) {
	if raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				k.Brokers = append(k.Brokers, b)
			}
		}
	}
	k.GroupID = envString("KAFKA_GROUP_ID", "courier-dispatch")
	k.Topic = envString("KAFKA_ORDERS_TOPIC", "orders")
}

func loadRateLimit(rl *RateLimit) error {
	var err error
	if rl.Enabled, err = envBool("RATE_LIMIT_ENABLED", rl.Enabled); err != nil {
		return err
	}
	if rl.Rate, err = envFloat("RATE_LIMIT_RATE", rl.Rate); err != nil {
		return err
	}
	if rl.Burst, err = envInt("RATE_LIMIT_BURST", rl.Burst); err != nil {
		return err
	}
	if rl.TTL, err = envDuration("RATE_LIMIT_TTL", rl.TTL); err != nil {
		return err
	}
	rl.MaxBuckets, err = envInt("RATE_LIMIT_MAX_BUCKETS", rl.MaxBuckets)
	return err
}

func loadPprof(p *PprofConfig) error {
	var err error
	if p.Enabled, err = envBool("PPROF_ENABLED", p.Enabled); err != nil {
		return err
	}
	p.Addr = envString("PPROF_ADDR", p.Addr)
	p.User = os.Getenv("PPROF_USER")
	p.Pass = os.Getenv("PPROF_PASS")
	return nil
}

func loadHub(h *Hub) error {
	var err error
	if h.SendBuffer, err = envInt("HUB_SEND_BUFFER", h.SendBuffer); err != nil {
		return err
	}
	h.WriteTimeout, err = envDuration("HUB_WRITE_TIMEOUT", h.WriteTimeout)
	return err
}

func parseFlags(cfg *Config) error {
	fs := pflag.CommandLine
	if fs.Lookup("port") == nil {
		fs.IntP("port", "p", cfg.Port, "port to listen on")
	}
	fs.ParseErrorsWhitelist.UnknownFlags = true
	if err := fs.Parse(os.Args[1:]); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if fs.Changed("port") {
		port, err := fs.GetInt("port")
		if err != nil {
			return fmt.Errorf("parse flags: %w", err)
		}
		cfg.Port = port
	}
	return nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
