package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/logx"
)

// NewLogger builds the process logger for the configured backend and level.
func NewLogger(cfg *config.Config) (logx.Logger, error) {
	switch cfg.Log.Backend {
	case config.LogBackendZap:
		return newZapLogger(cfg.Log.Level)
	case config.LogBackendSlog, "":
		return newSlogLogger(cfg.Log.Level)
	default:
		return nil, fmt.Errorf("unknown log backend %q", cfg.Log.Backend)
	}
}

func newSlogLogger(level string) (logx.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(orInfo(level))); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	base := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	return logx.NewSlogAdapter(base), nil
}

func newZapLogger(level string) (logx.Logger, error) {
	lvl, err := zapcore.ParseLevel(orInfo(level))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.TimeKey = "time"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return logx.NewZapAdapter(l), nil
}

func orInfo(level string) string {
	if level = strings.TrimSpace(level); level == "" {
		return "info"
	}
	return level
}
