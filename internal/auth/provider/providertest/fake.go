// Package providertest provides an in-memory OAuthProvider for tests.
package providertest

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"auth-gate/internal/auth"
)

const AuthURL = "https://idp.example/authorize"

// Fake approves codes registered with Approve. Each code can be
// exchanged once, like a real authorization code.
type Fake struct {
	mu        sync.Mutex
	codes     map[string]auth.Identity
	Err       error         // returned by every exchange when set
	Delay     time.Duration // exchange blocks this long or until ctx is done
	Verifiers []string      // code verifiers seen, in order
	Exchanges int
}

func New() *Fake {
	return &Fake{codes: make(map[string]auth.Identity)}
}

// Approve makes code exchangeable for identity.
func (f *Fake) Approve(code string, identity auth.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if identity.Provider == "" {
		identity.Provider = f.Name()
	}
	f.codes[code] = identity
}

func (f *Fake) Name() string {
	return "fake"
}

func (f *Fake) AuthCodeURL(state string, codeChallenge string) string {
	q := url.Values{}
	q.Set("state", state)
	q.Set("code_challenge", codeChallenge)
	q.Set("code_challenge_method", "S256")
	q.Set("scope", "openid profile email")
	return AuthURL + "?" + q.Encode()
}

func (f *Fake) ExchangeCode(ctx context.Context, code string, codeVerifier string) (*auth.Identity, error) {
	f.mu.Lock()
	f.Exchanges++
	f.Verifiers = append(f.Verifiers, codeVerifier)
	delay, err := f.Delay, f.Err
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	identity, ok := f.codes[code]
	if !ok {
		return nil, errors.New("invalid_grant")
	}
	delete(f.codes, code)
	return &identity, nil
}
