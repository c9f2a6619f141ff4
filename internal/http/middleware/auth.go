package middleware

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/identity"
	"courier-dispatch/internal/logx"
)

// tokenQueryParam carries the token for websocket clients that cannot set headers.
const tokenQueryParam = "access_token"

// Authenticate resolves the caller identity and rejects the request with 401 when it cannot.
func Authenticate(auth identity.Authenticator, logger logx.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logx.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := auth.Authenticate(r.Context(), credential(r))
			if err != nil {
				if !errors.Is(err, apperr.ErrUnauthorized) {
					logger.Error("authentication failed", logx.Err(err))
				}
				logger.Debug("unauthorized request",
					logx.String("method", r.Method),
					logx.String("path", r.URL.Path),
				)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", `Bearer realm="courier-dispatch"`)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"error":"unauthorized","code":"unauthorized"}`)
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
		})
	}
}

func credential(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get(tokenQueryParam)
}
