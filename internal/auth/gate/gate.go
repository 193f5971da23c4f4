// Package gate implements the login state machine independent of HTTP:
// start a login, accept its callback, answer "who is logged in" and log out.
package gate

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"auth-gate/internal/auth"
	"auth-gate/internal/auth/provider"
	"auth-gate/internal/logger"
	"auth-gate/internal/pending"
	"auth-gate/internal/session"
	"auth-gate/internal/utils"
)

const (
	DefaultExchangeTimeout = 10 * time.Second

	tokenBytes = 32
)

// Login is the outcome of StartLogin.
type Login struct {
	URL       string // provider consent URL
	State     string // correlation token to bind to the browser
	ExpiresAt time.Time
}

// Callback carries everything the provider and the browser sent back.
type Callback struct {
	Code           string // authorization code from the query
	State          string // state from the query
	BrowserState   string // state from the browser's signed cookie
	ProviderError  string // error= from the query, e.g. access_denied
	PriorSessionID string // session the browser already holds, if any
}

type Options struct {
	AttemptTTL      time.Duration
	ExchangeTimeout time.Duration
}

type Gate struct {
	provider provider.OAuthProvider
	attempts pending.Store
	sessions *session.Manager

	attemptTTL      time.Duration
	exchangeTimeout time.Duration
	now             func() time.Time
}

func New(
	p provider.OAuthProvider,
	attempts pending.Store,
	sessions *session.Manager,
	opts Options,
) *Gate {
	if opts.AttemptTTL <= 0 {
		opts.AttemptTTL = pending.DefaultTTL
	}
	if opts.ExchangeTimeout <= 0 {
		opts.ExchangeTimeout = DefaultExchangeTimeout
	}
	return &Gate{
		provider:        p,
		attempts:        attempts,
		sessions:        sessions,
		attemptTTL:      opts.AttemptTTL,
		exchangeTimeout: opts.ExchangeTimeout,
		now:             time.Now,
	}
}

// AttemptTTL is how long a started login stays claimable.
func (g *Gate) AttemptTTL() time.Duration {
	return g.attemptTTL
}

// SessionPolicy exposes the session lifetime for cookie expiry.
func (g *Gate) SessionPolicy() session.Policy {
	return g.sessions.Policy()
}

// StartLogin records a new attempt and returns the consent URL.
func (g *Gate) StartLogin(ctx context.Context) (*Login, error) {
	state, err := utils.RandomString(tokenBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: state: %v", auth.ErrConfiguration, err)
	}
	verifier, err := utils.RandomString(tokenBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: pkce: %v", auth.ErrConfiguration, err)
	}

	now := g.now()
	attempt := pending.Attempt{
		State:        state,
		CodeVerifier: verifier,
		CreatedAt:    now,
	}
	if err := g.attempts.Put(ctx, attempt, g.attemptTTL); err != nil {
		return nil, fmt.Errorf("%w: pending attempt: %v", auth.ErrSessionStore, err)
	}

	return &Login{
		URL:       g.provider.AuthCodeURL(state, challenge(verifier)),
		State:     state,
		ExpiresAt: now.Add(g.attemptTTL),
	}, nil
}

// HandleCallback validates the callback against the pending attempt,
// exchanges the code and creates the session. The attempt is consumed
// before the exchange, so a state can never be used twice.
func (g *Gate) HandleCallback(ctx context.Context, cb Callback) (*session.Session, error) {
	if cb.State == "" || cb.BrowserState == "" ||
		subtle.ConstantTimeCompare([]byte(cb.State), []byte(cb.BrowserState)) != 1 {
		return nil, auth.ErrCsrfMismatch
	}

	attempt, err := g.attempts.Claim(ctx, cb.State)
	if err != nil {
		return nil, fmt.Errorf("%w: claim attempt: %v", auth.ErrSessionStore, err)
	}
	if attempt == nil {
		return nil, auth.ErrCsrfMismatch
	}

	// The attempt is claimed: any failure below also ends the prior session.
	if cb.ProviderError != "" {
		return nil, g.loginFailed(ctx, cb.PriorSessionID, fmt.Errorf("provider returned %q", cb.ProviderError))
	}
	if cb.Code == "" {
		return nil, g.loginFailed(ctx, cb.PriorSessionID, errors.New("missing code"))
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, g.exchangeTimeout)
	defer cancel()

	identity, err := g.provider.ExchangeCode(exchangeCtx, cb.Code, attempt.CodeVerifier)
	if err != nil {
		return nil, g.loginFailed(ctx, cb.PriorSessionID, err)
	}
	if identity == nil || identity.ID == "" {
		return nil, g.loginFailed(ctx, cb.PriorSessionID, errors.New("provider returned no identity"))
	}

	// Re-login replaces whatever session the browser held before.
	if cb.PriorSessionID != "" {
		if err := g.sessions.Destroy(ctx, cb.PriorSessionID); err != nil {
			return nil, err
		}
	}

	sess, err := g.sessions.Create(ctx, *identity)
	if err != nil {
		return nil, err
	}

	logger.Info("login succeeded", map[string]any{
		"provider": identity.Provider,
		"subject":  identity.ID,
	})

	return sess, nil
}

// loginFailed destroys the prior session and wraps cause in
// auth.ErrUpstreamAuth. A store failure is logged; the upstream error
// still decides the outcome.
func (g *Gate) loginFailed(ctx context.Context, priorSessionID string, cause error) error {
	if err := g.sessions.Destroy(ctx, priorSessionID); err != nil {
		logger.Error("prior session not destroyed after failed login", map[string]any{
			"error": err.Error(),
		})
	}
	return fmt.Errorf("%w: %v", auth.ErrUpstreamAuth, cause)
}

// WhoAmI returns the identity bound to sessionID or
// auth.ErrNotAuthenticated.
func (g *Gate) WhoAmI(ctx context.Context, sessionID string) (*auth.Identity, error) {
	sess, err := g.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, auth.ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}
	identity := sess.Identity
	return &identity, nil
}

// Logout destroys the session. Logging out without a session succeeds.
func (g *Gate) Logout(ctx context.Context, sessionID string) error {
	return g.sessions.Destroy(ctx, sessionID)
}
