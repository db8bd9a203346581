package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sorjordet/sorjordet/pkg/jwt"
	"github.com/sorjordet/sorjordet/pkg/logger"
)

// Principal is the authenticated identity derived from a validated token.
// Handlers receive it only through the guard; it is never constructed from
// unverified input.
type Principal struct {
	Subject string
}

type principalContextKey struct{}

// PrincipalFromContext returns the authenticated principal stored by the
// guard middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}

// Guard validates bearer tokens on inbound requests. It is transport-agnostic
// at its core: Authenticate only needs headers, so any adapter can call it.
type Guard struct {
	svc *jwt.Service
	log *slog.Logger
}

// NewGuard builds a Guard validating against the shared secret store.
func NewGuard(secrets *Secrets, log *slog.Logger) (*Guard, error) {
	svc, err := jwt.New(secrets.signingKey)
	if err != nil {
		return nil, err
	}
	return &Guard{svc: svc, log: log}, nil
}

// Authenticate extracts and validates a bearer token from the request
// headers. Every failure returns ErrUnauthenticated; the concrete cause is
// logged and never surfaced, to deny attackers an error oracle.
func (g *Guard) Authenticate(h http.Header) (Principal, error) {
	token, ok := bearerToken(h)
	if !ok {
		g.reject("missing or malformed authorization header", nil)
		return Principal{}, ErrUnauthenticated
	}

	var claims Claims
	if err := g.svc.Parse(token, &claims); err != nil {
		g.reject("token validation failed", err)
		return Principal{}, ErrUnauthenticated
	}

	if claims.Issuer != Issuer {
		g.reject("unexpected issuer claim", nil)
		return Principal{}, ErrUnauthenticated
	}

	return Principal{Subject: claims.Subject}, nil
}

// Middleware composes Authenticate in front of a handler. Unauthenticated
// requests never reach the wrapped handler; authenticated ones carry the
// principal in the request context.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := g.Authenticate(r.Header)
		if err != nil {
			writeUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), principalContextKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Guard) reject(reason string, err error) {
	if g.log == nil {
		return
	}
	g.log.Warn("authentication rejected",
		slog.String("reason", reason),
		logger.Error(err),
		logger.Component("auth"),
	)
}

// writeUnauthorized emits the single uniform rejection body shared by every
// authentication failure path.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "not authorized"})
}

func bearerToken(h http.Header) (string, bool) {
	authHeader := h.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
