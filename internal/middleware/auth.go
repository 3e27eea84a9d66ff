// Package middleware holds the dashboard session-auth middleware.
package middleware

import (
	"context"
	"net/http"

	"github.com/netsentry-io/netsentry/common/httputil"
	"github.com/netsentry-io/netsentry/pkg/tokens"
)

type contextKey string

// TenantIDKey is the context key for the authenticated tenant.
const TenantIDKey contextKey = "tenant_id"

// AuthMiddleware validates dashboard session tokens and injects the
// tenant identity into the request context.
type AuthMiddleware struct {
	tokens *tokens.TokenGenerator
}

func NewAuthMiddleware(tg *tokens.TokenGenerator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tg}
}

// RequireSession rejects requests without a valid bearer session token.
func (m *AuthMiddleware) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := httputil.BearerToken(r)
		if token == "" {
			httputil.WriteError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		claims, err := m.tokens.ValidateSessionToken(token)
		if err != nil {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), TenantIDKey, claims.TenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// TenantID extracts the authenticated tenant from the context. Returns
// empty string when the request did not pass RequireSession.
func TenantID(ctx context.Context) string {
	if id, ok := ctx.Value(TenantIDKey).(string); ok {
		return id
	}
	return ""
}
