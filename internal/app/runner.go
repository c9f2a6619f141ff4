package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"courier-dispatch/internal/broadcast"
	"courier-dispatch/internal/config"
	"courier-dispatch/internal/jobs"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/repository"
)

const shutdownTimeout = 15 * time.Second

// Runner runs the HTTP service
type Runner struct {
	runFn func(*dig.Container) error
}

// NewRunner returns a new Runner
func NewRunner() *Runner {
	return &Runner{runFn: run}
}

// MustRun starts the service using the provided DI container and blocks until it stops
func (r *Runner) MustRun(container *dig.Container) {
	logger := loggerFrom(container)
	err := r.runFn(container)
	switch {
	case err == nil:
		return
	case errors.Is(err, context.Canceled):
		logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("startup aborted: startup timeout exceeded")
	default:
		logger.Error("run error", logx.Err(err))
		_ = logger.Sync()
		log.Fatalf("run error: %v", err)
	}
}

func loggerFrom(container *dig.Container) logx.Logger {
	var logger logx.Logger
	if err := container.Invoke(func(l logx.Logger) { logger = l }); err != nil || logger == nil {
		return logx.Nop()
	}
	return logger
}

type serviceIn struct {
	dig.In
	Ctx     context.Context
	Config  *config.Config
	Logger  logx.Logger
	Pool    *pgxpool.Pool
	Server  *http.Server
	Pprof   *http.Server `name:"pprof_server" optional:"true"`
	Hub     *broadcast.Hub
	Relay   relayCloser
	Sweeper *jobs.PresenceSweeper
}

func run(container *dig.Container) error {
	return container.Invoke(appRun)
}

var ensureSchema = repository.EnsureSchema

func appRun(in serviceIn) error {
	defer closeResources(in)

	if in.Config.DB.Bootstrap {
		if err := ensureSchema(in.Ctx, in.Pool); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
		in.Logger.Info("database schema ensured")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := in.Hub.Run(in.Ctx); err != nil {
			in.Logger.Error("broadcast hub stopped", logx.Err(err))
		}
	}()

	if err := in.Sweeper.Start(); err != nil {
		return fmt.Errorf("presence sweeper: %w", err)
	}

	serverErr := make(chan error, 2)
	startServer(in.Server, "http", in.Logger, serverErr)
	if in.Pprof != nil {
		startServer(in.Pprof, "pprof", in.Logger, serverErr)
	}

	var runErr error
	select {
	case <-in.Ctx.Done():
		in.Logger.Info("shutting down service")
		runErr = in.Ctx.Err()
	case err := <-serverErr:
		runErr = err
	}

	gracefulShutdown(in.Server, in.Logger, shutdownTimeout)
	if in.Pprof != nil {
		gracefulShutdown(in.Pprof, in.Logger, shutdownTimeout)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	in.Sweeper.Stop(stopCtx)

	if err := in.Hub.Close(); err != nil {
		in.Logger.Warn("broadcast hub close error", logx.Err(err))
	}
	wg.Wait()
	return runErr
}

func startServer(server *http.Server, name string, logger logx.Logger, errs chan<- error) {
	go func() {
		logger.Info("server listening", logx.String("server", name), logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("%s listen: %w", name, err)
		}
	}()
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.String("addr", srv.Addr), logx.Err(err))
	}
}

func closeResources(in serviceIn) {
	if err := in.Relay(); err != nil {
		in.Logger.Warn("relay close error", logx.Err(err))
	}
	if in.Pool != nil {
		in.Pool.Close()
	}
	_ = in.Logger.Sync()
}
