package provider

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// ClientConfig is an OAuth client registered with an OIDC issuer.
type ClientConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string // empty for public clients
	RedirectURL  string

	// RewriteAuthURL, when set, maps the discovered authorization
	// endpoint to the one browsers should be sent to.
	RewriteAuthURL func(discovered string) (string, error)
}

// Discover fetches the issuer's metadata and returns a provider
// registered under name. ID tokens must carry ClientID as audience.
func Discover(ctx context.Context, name string, c ClientConfig) (*OIDCProvider, error) {
	issuer, err := oidc.NewProvider(ctx, c.Issuer)
	if err != nil {
		return nil, fmt.Errorf("%s: discover %s: %w", name, c.Issuer, err)
	}

	endpoint := issuer.Endpoint()
	if c.RewriteAuthURL != nil {
		if endpoint.AuthURL, err = c.RewriteAuthURL(endpoint.AuthURL); err != nil {
			return nil, fmt.Errorf("%s: authorization endpoint: %w", name, err)
		}
	}

	return NewOIDCProvider(
		name,
		&oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       Scopes,
		},
		issuer.Verifier(&oidc.Config{ClientID: c.ClientID}),
	), nil
}
