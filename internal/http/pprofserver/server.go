// Package pprofserver exposes profiling and live stream counters on a separate debug listener.
package pprofserver

import (
	"crypto/subtle"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// StreamStats reports the number of live streams held by the broadcast hub.
type StreamStats interface {
	ObserverCount() int
	CourierCount() int
}

// Config stores debug server settings. Remote clients need basic auth; loopback is always allowed.
type Config struct {
	Addr    string
	User    string
	Pass    string
	Streams StreamStats
}

// New returns the debug server. It is not started.
func New(cfg Config) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           Handler(cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Handler serves /debug/pprof/*, /debug/vars and, when a source is set, /debug/streams.
func Handler(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(localOrBasicAuth(cfg.User, cfg.Pass))

	r.Mount("/debug", middleware.Profiler())
	if cfg.Streams != nil {
		r.Get("/debug/streams", streamCounts(cfg.Streams))
	}
	return r
}

func streamCounts(s StreamStats) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Couriers  int `json:"couriers"`
			Observers int `json:"observers"`
		}{s.CourierCount(), s.ObserverCount()})
	}
}

// localOrBasicAuth lets loopback callers through. Everyone else needs the
// configured credentials; with none configured, remote access is closed.
func localOrBasicAuth(user, pass string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isLoopback(r.RemoteAddr) || credentialsMatch(r, user, pass) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})
	}
}

func credentialsMatch(r *http.Request, user, pass string) bool {
	if user == "" || pass == "" {
		return false
	}
	u, p, ok := r.BasicAuth()
	// both comparisons run so timing does not reveal which one failed
	userOK := secureEq(u, user)
	passOK := secureEq(p, pass)
	return ok && userOK && passOK
}

func secureEq(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func isLoopback(remoteAddr string) bool {
	host := strings.TrimSpace(remoteAddr)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
