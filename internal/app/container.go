package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"courier-dispatch/internal/broadcast"
	"courier-dispatch/internal/config"
	"courier-dispatch/internal/http/handlers"
	"courier-dispatch/internal/http/middleware"
	"courier-dispatch/internal/http/middleware/ratelimit"
	"courier-dispatch/internal/http/pprofserver"
	"courier-dispatch/internal/http/router"
	"courier-dispatch/internal/identity"
	"courier-dispatch/internal/jobs"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/repository"
	"courier-dispatch/internal/service/assignment"
	"courier-dispatch/internal/service/courier"
	"courier-dispatch/internal/service/dispatch"
	"courier-dispatch/internal/service/position"
)

const (
	operationTimeout = 3 * time.Second
	dbConnectRetries = 10
	dbConnectDelay   = time.Second
)

type dbConnectFunc func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error)

// relayCloser releases the broadcast relay connection. It is never nil.
type relayCloser func() error

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect dbConnectFunc
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := b.registerBase(container, ctx); err != nil {
		return nil, err
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

func (b *ContainerBuilder) registerBase(container *dig.Container, ctx context.Context) error {
	if err := registerCore(container, ctx); err != nil {
		return fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return fmt.Errorf("DB: %w", err)
	}
	if err := registerMetrics(container); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := registerDomainServices(container); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	return nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		config.Load,
		NewLogger,
	)
}

func registerDb(container *dig.Container, dbConnect dbConnectFunc) error {
	providerDB := func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*pgxpool.Pool, error) {
		return dbConnect(ctx, logger, cfg.DB.DSN(), dbConnectRetries, dbConnectDelay)
	}
	return provideAll(container, providerDB)
}

func registerMetrics(container *dig.Container) error {
	return provideAll(container, provideMetrics)
}

func registerDomainServices(container *dig.Container) error {
	return provideAll(container,
		repository.NewCourierRepo,
		repository.NewOrderRepo,
		func(repo *repository.CourierRepo) *courier.Service {
			return courier.NewService(repo, operationTimeout)
		},
		func(repo *repository.CourierRepo) *position.Store {
			return position.NewStore(repo, operationTimeout)
		},
		newAssignmentService,
		provideRelay,
		newHub,
		func(a *assignment.Service, p *position.Store, c *courier.Service, h *broadcast.Hub) *dispatch.Facade {
			return dispatch.New(a, p, c, h)
		},
		newPresenceSweeper,
	)
}

type assignmentIn struct {
	dig.In
	Orders   *repository.OrderRepo
	Couriers *repository.CourierRepo
	Metrics  *metricSet
	Logger   logx.Logger
}

func newAssignmentService(in assignmentIn) *assignment.Service {
	return assignment.NewService(in.Orders, in.Couriers, in.Metrics.AssignmentOps, operationTimeout, in.Logger)
}

// provideRelay connects the cross-instance relay when Redis is configured.
// Without it the relay is nil and the hub fans out locally.
func provideRelay(cfg *config.Config, logger logx.Logger) (broadcast.Relay, relayCloser) {
	if cfg.Redis.Addr == "" {
		return nil, func() error { return nil }
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	logger.Info("broadcast relay enabled",
		logx.String("redis_addr", cfg.Redis.Addr),
		logx.String("channel", cfg.Redis.Channel),
	)
	return broadcast.NewRedisRelay(client, cfg.Redis.Channel, logger), client.Close
}

type hubIn struct {
	dig.In
	Config  *config.Config
	Source  *position.Store
	Relay   broadcast.Relay
	Metrics *metricSet
	Logger  logx.Logger
}

func newHub(in hubIn) *broadcast.Hub {
	return broadcast.NewHub(in.Source, broadcast.Options{
		SendBuffer: in.Config.Hub.SendBuffer,
		Relay:      in.Relay,
		Metrics:    in.Metrics.Broadcast,
		Logger:     in.Logger,
	})
}

func newPresenceSweeper(
	cfg *config.Config,
	repo *repository.CourierRepo,
	hub *broadcast.Hub,
	logger logx.Logger,
) *jobs.PresenceSweeper {
	return jobs.NewPresenceSweeper(repo, hub, cfg.Presence.SweepInterval, cfg.Presence.OfflineAfter, logger)
}

func registerHTTP(container *dig.Container) error {
	return provideAll(container,
		handlers.New,
		func(logger logx.Logger, f *dispatch.Facade) *handlers.OrderHandler {
			return handlers.NewOrderHandler(logger, f)
		},
		func(logger logx.Logger, f *dispatch.Facade) *handlers.CourierHandler {
			return handlers.NewCourierHandler(logger, f)
		},
		func(logger logx.Logger, f *dispatch.Facade) *handlers.TrackingHandler {
			return handlers.NewTrackingHandler(logger, f)
		},
		func(cfg *config.Config, logger logx.Logger, f *dispatch.Facade) *handlers.StreamHandler {
			return handlers.NewStreamHandler(logger, f, cfg.Hub.WriteTimeout)
		},
		func(cfg *config.Config) identity.Authenticator {
			return identity.NewJWTAuthenticator(cfg.Auth.Secret)
		},
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		newRouter,
		newServer,
		newPprofServer,
	)
}

type routerIn struct {
	dig.In
	Logger    logx.Logger
	Base      *handlers.Handlers
	Orders    *handlers.OrderHandler
	Couriers  *handlers.CourierHandler
	Tracking  *handlers.TrackingHandler
	Streams   *handlers.StreamHandler
	Auth      identity.Authenticator
	RateLimit *ratelimit.Middleware
}

func newRouter(in routerIn) http.Handler {
	return router.New(
		router.Handlers{
			Base:     in.Base,
			Orders:   in.Orders,
			Couriers: in.Couriers,
			Tracking: in.Tracking,
			Streams:  in.Streams,
		},
		router.Middlewares{
			Auth:      middleware.Authenticate(in.Auth, in.Logger),
			RateLimit: in.RateLimit.Handler(),
		},
		promhttp.Handler(),
		in.Logger,
	)
}

func newServer(cfg *config.Config, mux http.Handler) *http.Server {
	// No WriteTimeout: it would cut hijacked websocket streams.
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

type pprofOut struct {
	dig.Out
	Server *http.Server `name:"pprof_server"`
}

func newPprofServer(cfg *config.Config, hub *broadcast.Hub) pprofOut {
	if !cfg.Pprof.Enabled {
		return pprofOut{}
	}
	return pprofOut{Server: pprofserver.New(pprofserver.Config{
		Addr:    cfg.Pprof.Addr,
		User:    cfg.Pprof.User,
		Pass:    cfg.Pprof.Pass,
		Streams: hub,
	})}
}
