package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator validates a bearer token and returns the claims carried in it.
type TokenValidator interface {
	ValidateToken(tokenString string) (*CallerClaims, error)
}

// CallerClaims is what the middleware needs from a validated token: the
// on-ledger address the caller acts as. Role checks inside transition
// handlers compare this address against the aggregate's role fields.
type CallerClaims struct {
	Address string
}

type contextKeyCaller struct{}

// ContextKeyCaller is exported for use in handlers and tests.
var ContextKeyCaller = contextKeyCaller{}

// GetCaller retrieves the authenticated caller address from the context.
func GetCaller(ctx context.Context) string {
	addr, ok := ctx.Value(ContextKeyCaller).(string)
	if !ok {
		return ""
	}
	return addr
}

// WithCaller stores a caller address on the context. Exposed for tests and
// for transports that authenticate by other means.
func WithCaller(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, addr)
}

// RequireAuth rejects requests without a valid bearer token and stashes the
// caller address on the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				writeUnauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token", "error", err)
				writeUnauthorized(w)
				return
			}

			ctx := WithCaller(r.Context(), claims.Address)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"UNAUTHORIZED","message":"invalid or missing bearer token"}`))
}
