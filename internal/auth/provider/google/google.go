// Package google signs users in with their Google account.
package google

import (
	"context"
	"fmt"

	"auth-gate/internal/auth"
	"auth-gate/internal/auth/provider"
)

const providerName = "google"

var issuer = "https://accounts.google.com"

// New discovers Google's endpoints. Google only issues confidential
// clients, so all three settings are required.
func New(ctx context.Context, clientID, clientSecret, redirectURL string) (*provider.OIDCProvider, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, fmt.Errorf("%w: google client id, secret and redirect url are required", auth.ErrConfiguration)
	}

	return provider.Discover(ctx, providerName, provider.ClientConfig{
		Issuer:       issuer,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
	})
}
