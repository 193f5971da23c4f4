package provider

import (
	"context"
	"errors"
	"fmt"

	"auth-gate/internal/auth"
	"auth-gate/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Scopes requested from every provider.
var Scopes = []string{oidc.ScopeOpenID, "profile", "email"}

// OIDCProvider implements OAuthProvider for any OpenID Connect issuer.
// Concrete providers only differ in how they discover endpoints.
type OIDCProvider struct {
	name        string
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

func NewOIDCProvider(
	name string,
	oauthConfig *oauth2.Config,
	verifier *oidc.IDTokenVerifier,
) *OIDCProvider {
	return &OIDCProvider{
		name:        name,
		oauthConfig: oauthConfig,
		verifier:    verifier,
	}
}

// Name returns the provider identifier used by the registry.
func (p *OIDCProvider) Name() string {
	return p.name
}

// AuthCodeURL builds the OAuth authorization URL with PKCE parameters.
func (p *OIDCProvider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (p *OIDCProvider) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (*auth.Identity, error) {

	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("%s token exchange failed: %w", p.name, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%s did not return id_token", p.name)
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%s id_token verification failed: %w", p.name, err)
	}

	var claims struct {
		Subject           string `json:"sub"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Email             string `json:"email"`
		EmailVerified     bool   `json:"email_verified"`
		Picture           string `json:"picture"`
	}

	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%s id_token claims parse failed: %w", p.name, err)
	}

	if claims.Subject == "" {
		return nil, errors.New(p.name + " id_token missing sub claim")
	}

	displayName := claims.Name
	if displayName == "" {
		displayName = claims.PreferredUsername
	}
	if displayName == "" {
		displayName = claims.Email
	}

	logger.Info("oidc verified", map[string]any{
		"provider":       p.name,
		"issuer":         idToken.Issuer,
		"email_present":  claims.Email != "",
		"email_verified": claims.EmailVerified,
		"picture":        claims.Picture != "",
		"expiry_unix":    idToken.Expiry.Unix(),
	})

	return &auth.Identity{
		ID:          claims.Subject,
		DisplayName: displayName,
		Email:       auth.StringPtr(claims.Email),
		AvatarURL:   auth.StringPtr(claims.Picture),
		Provider:    p.name,
	}, nil
}
