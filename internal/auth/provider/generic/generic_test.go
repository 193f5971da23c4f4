package generic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"auth-gate/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discoveryServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/protocol/openid-connect/auth",
			"token_endpoint":         srv.URL + "/protocol/openid-connect/token",
			"jwks_uri":               srv.URL + "/protocol/openid-connect/certs",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewDiscoversEndpoints(t *testing.T) {
	srv := discoveryServer(t)

	p, err := New(context.Background(), Config{
		Issuer:      srv.URL,
		ClientID:    "gate",
		RedirectURL: "http://localhost:5000/auth/callback",
	})
	require.NoError(t, err)
	assert.Equal(t, "oidc", p.Name())

	u, err := url.Parse(p.AuthCodeURL("s", "c"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/protocol/openid-connect/auth", u.Scheme+"://"+u.Host+u.Path)
}

func TestNewRebasesAuthURL(t *testing.T) {
	srv := discoveryServer(t)

	p, err := New(context.Background(), Config{
		Issuer:        srv.URL,
		ClientID:      "gate",
		RedirectURL:   "http://localhost:5000/auth/callback",
		PublicBaseURL: "https://login.example.com",
	})
	require.NoError(t, err)

	u, err := url.Parse(p.AuthCodeURL("s", "c"))
	require.NoError(t, err)
	assert.Equal(t, "login.example.com", u.Host)
	assert.Equal(t, "/protocol/openid-connect/auth", u.Path)
}

func TestNewMissingFields(t *testing.T) {
	_, err := New(context.Background(), Config{ClientID: "gate"})
	assert.ErrorIs(t, err, auth.ErrConfiguration)
}

func TestRebaseRejectsRelative(t *testing.T) {
	_, err := rebase("http://internal:8080/auth", "/relative")
	assert.Error(t, err)
}
