// Package reflector mirrors the gate's view of the current browser: it
// checks /whoami once on load and renders Loading, Anonymous,
// Authenticated or Error.
package reflector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"auth-gate/internal/auth"
)

type State int

const (
	Loading State = iota
	Anonymous
	Authenticated
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrUnreachable means the gate could not be asked. It never implies
	// that the browser is logged out.
	ErrUnreachable = errors.New("failed to contact server")

	// ErrLogoutFailed means the gate did not confirm the logout.
	ErrLogoutFailed = errors.New("failed to logout")
)

// View is an immutable snapshot of the reflector.
type View struct {
	State    State
	Identity *auth.Identity
	Err      error
	LoginURL string
}

type Reflector struct {
	base   *url.URL
	client *http.Client

	mu       sync.Mutex
	loaded   bool
	state    State
	identity *auth.Identity
	err      error
}

// New points the reflector at the gate's base URL. The client must carry
// the browser's cookies (usually through a cookie jar).
func New(baseURL string, client *http.Client) (*Reflector, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("reflector: base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("reflector: base url %q is not absolute", baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Reflector{base: u, client: client, state: Loading}, nil
}

func (r *Reflector) endpoint(path string) string {
	return r.base.String() + path
}

// LoginURL is the full-page navigation target that starts a login. The
// provider's consent screen cannot be rendered inside the calling page,
// so this is never fetched as an API call.
func (r *Reflector) LoginURL() string {
	return r.endpoint("/auth/start")
}

// View returns the current snapshot.
func (r *Reflector) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewLocked()
}

func (r *Reflector) viewLocked() View {
	return View{
		State:    r.state,
		Identity: r.identity,
		Err:      r.err,
		LoginURL: r.LoginURL(),
	}
}

// Load asks the gate who is logged in. Only the first call performs the
// request; later calls return the current view.
func (r *Reflector) Load(ctx context.Context) View {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return r.viewLocked()
	}
	r.loaded = true

	identity, err := r.whoAmI(ctx)
	switch {
	case err == nil && identity != nil:
		r.state, r.identity, r.err = Authenticated, identity, nil
	case err == nil:
		r.state, r.identity, r.err = Anonymous, nil, nil
	default:
		r.state, r.identity, r.err = Error, nil, err
	}
	return r.viewLocked()
}

// whoAmI returns (nil, nil) for a definite "not authenticated".
func (r *Reflector) whoAmI(ctx context.Context) (*auth.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint("/whoami"), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var identity auth.Identity
		if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
			return nil, fmt.Errorf("%w: decode identity: %v", ErrUnreachable, err)
		}
		return &identity, nil
	case http.StatusUnauthorized:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: whoami returned %d", ErrUnreachable, resp.StatusCode)
	}
}

// Logout asks the gate to destroy the session. On failure the view stays
// Authenticated: the session may still be live on the server.
func (r *Reflector) Logout(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.logout(ctx)
	if err != nil {
		r.err = err
		return err
	}

	r.state, r.identity, r.err = Anonymous, nil, nil
	return nil
}

func (r *Reflector) logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint("/logout"), nil)
	if err != nil {
		return err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLogoutFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: server returned %d", ErrLogoutFailed, resp.StatusCode)
	}
	return nil
}
