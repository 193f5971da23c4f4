package middleware

import (
	"context"
	"errors"
	"net/http"

	"auth-gate/internal/auth"
	"auth-gate/internal/logger"
	"auth-gate/internal/session"
)

// unexported, collision-proof context key
type identityContextKeyType struct{}

var identityKey = identityContextKeyType{}

// IdentityFromContext extracts the authenticated identity from context.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok
}

// Resolver maps a session id to the identity bound to it.
type Resolver interface {
	WhoAmI(ctx context.Context, sessionID string) (*auth.Identity, error)
}

type AuthMiddleware struct {
	resolver Resolver
	cookie   *session.SignedCookie
}

func NewAuthMiddleware(resolver Resolver, cookie *session.SignedCookie) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver, cookie: cookie}
}

func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Read and verify session cookie
		sessionID := a.cookie.Read(r)
		if sessionID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// 2. Resolve session; expiry is enforced by the session manager
		identity, err := a.resolver.WhoAmI(r.Context(), sessionID)
		if errors.Is(err, auth.ErrNotAuthenticated) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err != nil {
			logger.Error("session lookup failed", map[string]any{
				"error": err.Error(),
			})
			http.Error(w, "session store unavailable", http.StatusInternalServerError)
			return
		}

		// 3. Attach identity to context
		ctx := context.WithValue(r.Context(), identityKey, identity)

		// 4. Continue request
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
