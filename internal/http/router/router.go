// Package router assembles the HTTP surface of the dispatch service.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"courier-dispatch/internal/http/handlers"
	"courier-dispatch/internal/http/middleware"
	"courier-dispatch/internal/logx"
)

// Handlers groups the endpoint handlers mounted by New.
type Handlers struct {
	Base     *handlers.Handlers
	Orders   *handlers.OrderHandler
	Couriers *handlers.CourierHandler
	Tracking *handlers.TrackingHandler
	Streams  *handlers.StreamHandler
}

// Middlewares carries the pluggable request middlewares. Nil entries are skipped.
type Middlewares struct {
	// Auth resolves the caller identity and rejects anonymous requests.
	Auth func(http.Handler) http.Handler
	// RateLimit runs after Auth on courier routes so buckets key by courier.
	RateLimit func(http.Handler) http.Handler
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(h Handlers, mw Middlewares, metrics http.Handler, logger logx.Logger) http.Handler {
	if logger == nil {
		logger = logx.Nop()
	}
	auth := orPassThrough(mw.Auth)
	limit := orPassThrough(mw.RateLimit)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Observability(logger))

	r.Get("/ping", h.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.Base.HealthcheckHead))
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	r.NotFound(h.Base.NotFound)
	r.MethodNotAllowed(h.Base.MethodNotAllowed)

	r.Route("/orders", func(r chi.Router) {
		public, courier := r.With(limit), r.With(auth, limit)
		public.Post("/", h.Orders.Create)
		public.Get("/available", h.Orders.ListAvailable)
		public.Get("/nearest/{courier_id}", h.Orders.Nearest)
		public.Get("/{id}", h.Orders.Get)
		public.Delete("/{id}", h.Orders.Delete)
		public.Post("/{id}/assign/{courier_id}", h.Orders.Assign)
		courier.Post("/{id}/complete", h.Orders.Complete)
	})

	r.Route("/couriers", func(r chi.Router) {
		public, courier := r.With(limit), r.With(auth, limit)
		public.Get("/", h.Couriers.List)
		public.Post("/", h.Couriers.Create)
		courier.Get("/me", h.Couriers.Me)
		courier.Patch("/me/status", h.Couriers.SetMyStatus)
		public.Get("/{id}", h.Couriers.GetByID)
		public.Put("/{id}", h.Couriers.Replace)
		public.Patch("/{id}", h.Couriers.Update)
		public.Delete("/{id}", h.Couriers.Delete)
		public.Get("/{id}/active-order", h.Couriers.ActiveOrder)
		public.Get("/{id}/orders", h.Couriers.Orders)
	})

	r.Route("/tracking", func(r chi.Router) {
		public, courier := r.With(limit), r.With(auth, limit)
		courier.Post("/update_position", h.Tracking.UpdatePosition)
		public.Get("/position/{courier_id}", h.Tracking.Position)
		public.Get("/all_positions", h.Tracking.AllPositions)
	})

	// Streams are long-lived; only the handshake is rate limited.
	r.Route("/ws", func(r chi.Router) {
		r.With(auth, limit).Get("/courier", h.Streams.Courier)
		r.With(limit).Get("/observer", h.Streams.Observer)
	})

	return r
}

func orPassThrough(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw != nil {
		return mw
	}
	return func(next http.Handler) http.Handler { return next }
}
