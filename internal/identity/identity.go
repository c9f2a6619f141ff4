// Package identity verifies caller credentials issued by the external identity provider.
package identity

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"courier-dispatch/internal/apperr"
)

// Identity is the authenticated courier behind a request.
type Identity struct {
	CourierID int64
}

// Authenticator turns a credential into an Identity or apperr.ErrUnauthorized.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (Identity, error)
}

// JWTAuthenticator verifies HS256 tokens whose subject is the courier id.
type JWTAuthenticator struct {
	secret []byte
	leeway time.Duration
	now    func() time.Time
}

// NewJWTAuthenticator creates a verifier. An empty secret rejects every token.
func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{
		secret: []byte(secret),
		leeway: 30 * time.Second,
		now:    time.Now,
	}
}

// Authenticate parses and verifies the token.
func (a *JWTAuthenticator) Authenticate(_ context.Context, credential string) (Identity, error) {
	if len(a.secret) == 0 {
		return Identity{}, fmt.Errorf("no verification key configured: %w", apperr.ErrUnauthorized)
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Identity{}, fmt.Errorf("missing credential: %w", apperr.ErrUnauthorized)
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(credential, &claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(a.leeway),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("verify token: %v: %w", err, apperr.ErrUnauthorized)
	}

	// Only canonical decimal ids: no sign, no leading zeros.
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 || strconv.FormatInt(id, 10) != claims.Subject {
		return Identity{}, fmt.Errorf("subject %q is not a courier id: %w", claims.Subject, apperr.ErrUnauthorized)
	}
	return Identity{CourierID: id}, nil
}

type ctxKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
