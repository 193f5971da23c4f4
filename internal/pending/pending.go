// Package pending tracks login attempts between the redirect to the
// identity provider and the callback. Every attempt can be claimed once.
package pending

import (
	"context"
	"time"
)

const DefaultTTL = 5 * time.Minute

// Attempt correlates an outbound redirect with its callback.
type Attempt struct {
	State        string    `json:"state"`
	CodeVerifier string    `json:"code_verifier"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists attempts keyed by state.
//
// Claim atomically removes and returns the attempt. It returns (nil, nil)
// when the state is unknown, expired or already claimed.
type Store interface {
	Put(ctx context.Context, a Attempt, ttl time.Duration) error
	Claim(ctx context.Context, state string) (*Attempt, error)
}
