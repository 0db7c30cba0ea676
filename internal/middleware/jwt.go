package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/scribeworks/blog-backend/internal/auth"
)

type ctxKey string

const claimsKey ctxKey = "auth_claims"

// JWT verifies the Authorization bearer token and injects its claims into the
// request context. Any verification failure answers 401; protected handlers
// never see an unauthenticated request.
func JWT(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, "Authorization token required")
				return
			}

			claims, err := auth.VerifyToken(strings.TrimPrefix(header, "Bearer "), secret)
			if err != nil {
				writeAuthError(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims returns a context carrying the verified token claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaims extracts the verified token claims set by the JWT middleware.
func GetClaims(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
