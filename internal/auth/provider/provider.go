// Package provider talks to identity providers: it builds consent URLs
// and turns an authorization code into an auth.Identity.
package provider

import (
	"context"

	"auth-gate/internal/auth"
)

// OAuthProvider is one external identity provider. It knows nothing
// about sessions or cookies.
type OAuthProvider interface {
	// Name is the registry key, e.g. "google" or "oidc".
	Name() string

	// AuthCodeURL returns the consent URL carrying state and the S256
	// PKCE challenge.
	AuthCodeURL(state string, codeChallenge string) string

	// ExchangeCode redeems a single-use code with the verifier that
	// matches the challenge sent earlier. ctx bounds the round trip.
	ExchangeCode(ctx context.Context, code string, codeVerifier string) (*auth.Identity, error)
}
