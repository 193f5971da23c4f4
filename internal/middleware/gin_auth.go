package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextIdentityKey is the gin context key holding *auth.Identity.
const ContextIdentityKey = "identity"

// RequireIdentity runs AuthMiddleware inside a gin chain. Rejected
// requests are answered by AuthMiddleware and abort the chain; accepted
// ones continue with the identity stored under ContextIdentityKey.
func RequireIdentity(m *AuthMiddleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		admitted := false
		m.RequireAuth(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			admitted = true
			c.Request = r
		})).ServeHTTP(c.Writer, c.Request)

		if !admitted {
			c.Abort()
			return
		}

		if identity, ok := IdentityFromContext(c.Request.Context()); ok {
			c.Set(ContextIdentityKey, identity)
		}
		c.Next()
	}
}
