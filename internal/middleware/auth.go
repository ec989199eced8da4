// Package middleware provides HTTP middlewares for authentication and
// request logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tdnguyen/astroserve/internal/models"
	"github.com/tdnguyen/astroserve/internal/token"
)

type ctxKey string

const principalKey ctxKey = "principal"

// TokenVerifier validates a raw session token and returns its claims.
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// CookieAuth enforces session authentication via the access_token cookie.
//
// A missing cookie and an invalid or expired token are reported
// separately, matching what the client surfaces to the user. On success
// the verified principal is stored in the request context for downstream
// handlers.
func CookieAuth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("access_token")
			if err != nil {
				unauthorized(w, "Not authenticated.")
				return
			}

			claims, err := tokens.Verify(cookie.Value)
			if err != nil {
				unauthorized(w, "Invalid token.")
				return
			}

			principal := &models.Principal{
				AccountID: claims.AccountID,
				Phone:     claims.Phone,
				Role:      claims.Role,
			}
			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipalFromContext extracts the authenticated principal from the
// request context. Returns nil if the request did not pass CookieAuth.
func GetPrincipalFromContext(ctx context.Context) *models.Principal {
	principal, _ := ctx.Value(principalKey).(*models.Principal)
	return principal
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
