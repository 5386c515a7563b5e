// Package middleware holds the HTTP middleware for the API surface.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pulsefit/pulsefit-server/internal/auth/session"
)

type contextKey string

const sessionClaimsKey contextKey = "sessionClaims"

// SessionAuth validates the Bearer session token from the Authorization
// header and stores its claims in the request context.
func SessionAuth(sessions *session.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized(w)
				return
			}

			claims, err := sessions.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), sessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the verified session claims, or nil when the
// request did not pass SessionAuth.
func SessionFromContext(ctx context.Context) *session.Claims {
	claims, _ := ctx.Value(sessionClaimsKey).(*session.Claims)
	return claims
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "invalid or missing session token"}`))
}
