package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auth-gate/internal/auth"
)

// ErrNotFound is returned when a session is absent or expired.
var ErrNotFound = errors.New("session: not found")

const (
	DefaultIdleTimeout     = 30 * time.Minute
	DefaultAbsoluteTimeout = 24 * time.Hour

	// touchInterval limits how often a read writes back LastSeenAt.
	touchInterval = time.Minute
)

// Policy controls session lifetime. A zero IdleTimeout disables the idle
// deadline; the absolute deadline always applies.
type Policy struct {
	IdleTimeout     time.Duration
	AbsoluteTimeout time.Duration
}

func (p Policy) normalize() Policy {
	if p.AbsoluteTimeout <= 0 {
		p.AbsoluteTimeout = DefaultAbsoluteTimeout
	}
	if p.IdleTimeout < 0 {
		p.IdleTimeout = 0
	}
	return p
}

func (p Policy) deadline(lastSeen, absolute time.Time) time.Time {
	if p.IdleTimeout == 0 {
		return absolute
	}
	idle := lastSeen.Add(p.IdleTimeout)
	if idle.Before(absolute) {
		return idle
	}
	return absolute
}

// Manager creates, resolves and destroys sessions on top of a Store and
// owns the expiry policy. Backend failures are wrapped in
// auth.ErrSessionStore.
type Manager struct {
	store  Store
	policy Policy
	now    func() time.Time
}

func NewManager(store Store, policy Policy) *Manager {
	return &Manager{
		store:  store,
		policy: policy.normalize(),
		now:    time.Now,
	}
}

// Policy returns the effective expiry policy.
func (m *Manager) Policy() Policy {
	return m.policy
}

// Create binds identity to a fresh session id.
func (m *Manager) Create(ctx context.Context, identity auth.Identity) (*Session, error) {
	sessionID, err := newID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrConfiguration, err)
	}

	now := m.now()
	absolute := now.Add(m.policy.AbsoluteTimeout)

	sess := Session{
		SessionID:         sessionID,
		Identity:          identity,
		CreatedAt:         now,
		LastSeenAt:        now,
		AbsoluteExpiresAt: absolute,
		ExpiresAt:         m.policy.deadline(now, absolute),
	}

	if err := m.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("%w: create: %v", auth.ErrSessionStore, err)
	}

	return &sess, nil
}

// Get resolves a live session and slides its idle deadline.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrNotFound
	}

	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: get: %v", auth.ErrSessionStore, err)
	}
	if sess == nil {
		return nil, ErrNotFound
	}

	now := m.now()
	if sess.Expired(now) || !now.Before(sess.AbsoluteExpiresAt) {
		if err := m.store.Delete(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("%w: delete expired: %v", auth.ErrSessionStore, err)
		}
		return nil, ErrNotFound
	}

	if m.policy.IdleTimeout > 0 && now.Sub(sess.LastSeenAt) >= touchInterval {
		sess.LastSeenAt = now
		sess.ExpiresAt = m.policy.deadline(now, sess.AbsoluteExpiresAt)
		if err := m.store.Update(ctx, *sess); err != nil {
			return nil, fmt.Errorf("%w: touch: %v", auth.ErrSessionStore, err)
		}
	}

	return sess, nil
}

// Destroy removes the session. Absent sessions are not an error.
func (m *Manager) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: delete: %v", auth.ErrSessionStore, err)
	}
	return nil
}
