// Package generic configures any OpenID Connect issuer (Keycloak, Dex,
// Auth0, ...) through discovery.
package generic

import (
	"context"
	"fmt"
	"net/url"

	"auth-gate/internal/auth"
	"auth-gate/internal/auth/provider"
)

const providerName = "oidc"

type Config struct {
	Issuer       string // realm issuer URL, e.g. http://keycloak:8080/realms/demo
	ClientID     string
	ClientSecret string // empty for public clients
	RedirectURL  string

	// PublicBaseURL replaces scheme and host of the discovered
	// authorization endpoint. Needed when the gate reaches the issuer on
	// an internal address the browser cannot resolve.
	PublicBaseURL string
}

func New(ctx context.Context, cfg Config) (*provider.OIDCProvider, error) {
	if cfg.Issuer == "" || cfg.ClientID == "" || cfg.RedirectURL == "" {
		return nil, fmt.Errorf("%w: oidc issuer, client id and redirect url are required", auth.ErrConfiguration)
	}

	client := provider.ClientConfig{
		Issuer:       cfg.Issuer,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
	}
	if cfg.PublicBaseURL != "" {
		client.RewriteAuthURL = func(discovered string) (string, error) {
			rebased, err := rebase(discovered, cfg.PublicBaseURL)
			if err != nil {
				return "", fmt.Errorf("%w: OIDC_PUBLIC_BASE_URL: %v", auth.ErrConfiguration, err)
			}
			return rebased, nil
		}
	}

	return provider.Discover(ctx, providerName, client)
}

func rebase(endpoint, base string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if b.Scheme == "" || b.Host == "" {
		return "", fmt.Errorf("%q is not an absolute url", base)
	}
	u.Scheme = b.Scheme
	u.Host = b.Host
	return u.String(), nil
}
