package auth

import "errors"

var (
	// ErrConfiguration means the process cannot authenticate anyone:
	// missing provider credentials or a broken entropy source.
	ErrConfiguration = errors.New("auth: configuration error")

	// ErrCsrfMismatch means a callback did not match a live, unconsumed
	// login attempt started by the same browser.
	ErrCsrfMismatch = errors.New("auth: state mismatch")

	// ErrUpstreamAuth means the identity provider rejected the login,
	// the code exchange failed, or it timed out.
	ErrUpstreamAuth = errors.New("auth: upstream authentication failed")

	// ErrSessionStore means a session or attempt backend failed.
	ErrSessionStore = errors.New("auth: session store error")

	// ErrNotAuthenticated is the normal "no live session" outcome.
	ErrNotAuthenticated = errors.New("auth: not authenticated")
)
