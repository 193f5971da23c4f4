package session

import (
	"context"
	"time"

	"auth-gate/internal/auth"
)

// Session binds an opaque session id to the identity captured at login.
type Session struct {
	SessionID         string        `json:"session_id"`
	Identity          auth.Identity `json:"identity"`
	CreatedAt         time.Time     `json:"created_at"`
	LastSeenAt        time.Time     `json:"last_seen_at"`
	AbsoluteExpiresAt time.Time     `json:"absolute_expires_at"`
	ExpiresAt         time.Time     `json:"expires_at"` // min(idle deadline, absolute deadline)
}

// Expired reports whether the session is past its effective deadline.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store defines how sessions are stored and retrieved.
// Get returns (nil, nil) when the session does not exist.
// Implementations only need single-key atomicity.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
