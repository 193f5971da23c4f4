package handler

import (
	"time"

	"auth-gate/internal/session"
)

const stateCookieName = "__oauth_state"

// newStateCookie binds a pending login to the browser that started it.
// The cookie carries the signed state; the attempt itself lives in the
// pending store.
func newStateCookie(secret []byte, ttl time.Duration, opts session.CookieOptions) *session.SignedCookie {
	return session.NewSignedCookie(stateCookieName, secret, ttl, opts)
}
