package auth

import (
	"context"
	"net/http"

	"github.com/greengo-app/greengo-api/internal/identity"
	"github.com/greengo-app/greengo-api/internal/models"
	pkghttp "github.com/greengo-app/greengo-api/pkg/http"
)

type contextKey string

const claimsContextKey contextKey = "sessionClaims"

// RequireSession rejects requests that do not carry a valid full-access
// session token. Challenge and reset tokens are refused here regardless of
// signature validity: holding one proves at most a partial authentication.
func RequireSession(tm *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := identity.ParseBearerToken(r.Header.Get("Authorization"))
			if err != nil {
				pkghttp.WriteUnauthorized(w, "authentication required")
				return
			}

			claims, err := tm.Validate(raw)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "invalid or expired session")
				return
			}

			if !claims.IsFullAccess() {
				pkghttp.WriteUnauthorized(w, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextWithClaims returns a context carrying session claims the way
// RequireSession stores them. Exists for handler tests.
func ContextWithClaims(ctx context.Context, claims *models.SessionClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// GetUserID returns the authenticated user's ID from the request context.
// It is only meaningful inside handlers wrapped by RequireSession.
func GetUserID(ctx context.Context) (int64, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*models.SessionClaims)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}
