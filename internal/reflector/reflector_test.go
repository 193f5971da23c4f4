package reflector

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"auth-gate/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGate struct {
	whoamiCalls atomic.Int32
	identity    *auth.Identity
	whoamiCode  int
	logoutCode  int
}

func (f *fakeGate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/whoami":
		f.whoamiCalls.Add(1)
		if f.whoamiCode != 0 {
			w.WriteHeader(f.whoamiCode)
			return
		}
		if f.identity == nil {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"not authenticated"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(f.identity)
	case "/logout":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if f.logoutCode != 0 {
			w.WriteHeader(f.logoutCode)
			return
		}
		f.identity = nil
		_, _ = w.Write([]byte(`{"ok":true}`))
	default:
		http.NotFound(w, r)
	}
}

func newReflector(t *testing.T, gate *fakeGate) *Reflector {
	t.Helper()
	srv := httptest.NewServer(gate)
	t.Cleanup(srv.Close)

	r, err := New(srv.URL+"/", srv.Client())
	require.NoError(t, err)
	return r
}

func ada() *auth.Identity {
	return &auth.Identity{
		ID:          "1",
		DisplayName: "Ada",
		Email:       auth.StringPtr("ada@example.com"),
	}
}

func TestInitialStateIsLoading(t *testing.T) {
	r := newReflector(t, &fakeGate{})
	assert.Equal(t, Loading, r.View().State)
}

func TestLoadAnonymous(t *testing.T) {
	r := newReflector(t, &fakeGate{})

	v := r.Load(context.Background())
	assert.Equal(t, Anonymous, v.State)
	assert.Nil(t, v.Identity)
	assert.NoError(t, v.Err)
}

func TestLoadAuthenticatedCallsWhoAmIOnce(t *testing.T) {
	gate := &fakeGate{identity: ada()}
	r := newReflector(t, gate)

	v := r.Load(context.Background())
	require.Equal(t, Authenticated, v.State)
	assert.Equal(t, "Ada", v.Identity.DisplayName)

	r.Load(context.Background())
	assert.Equal(t, int32(1), gate.whoamiCalls.Load())
}

func TestLoadNetworkFailureIsNotAnonymous(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r, err := New(url, nil)
	require.NoError(t, err)

	v := r.Load(context.Background())
	assert.Equal(t, Error, v.State)
	assert.ErrorIs(t, v.Err, ErrUnreachable)
}

func TestLoadServerErrorIsNotAnonymous(t *testing.T) {
	r := newReflector(t, &fakeGate{whoamiCode: http.StatusInternalServerError})

	v := r.Load(context.Background())
	assert.Equal(t, Error, v.State)
}

func TestLogoutSuccess(t *testing.T) {
	r := newReflector(t, &fakeGate{identity: ada()})
	r.Load(context.Background())

	require.NoError(t, r.Logout(context.Background()))
	assert.Equal(t, Anonymous, r.View().State)
}

func TestLogoutFailureStaysAuthenticated(t *testing.T) {
	r := newReflector(t, &fakeGate{identity: ada(), logoutCode: http.StatusInternalServerError})
	r.Load(context.Background())

	err := r.Logout(context.Background())
	assert.ErrorIs(t, err, ErrLogoutFailed)

	v := r.View()
	assert.Equal(t, Authenticated, v.State)
	assert.Equal(t, "Ada", v.Identity.DisplayName)
	assert.ErrorIs(t, v.Err, ErrLogoutFailed)
}

func TestLoginURL(t *testing.T) {
	r, err := New("http://localhost:5000/", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/auth/start", r.LoginURL())

	_, err = New("localhost:5000", nil)
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	cases := []struct {
		name string
		view View
		want string
	}{
		{"loading", View{State: Loading}, "Loading...\n"},
		{"anonymous", View{State: Anonymous, LoginURL: "http://gate/auth/start"}, "Not signed in.\nLog in: http://gate/auth/start\n"},
		{"error", View{State: Error, Err: ErrUnreachable}, "Error: failed to contact server\n"},
		{"authenticated", View{State: Authenticated, Identity: ada()}, "Welcome, Ada\nada@example.com\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tc.view.Render(&buf))
			assert.Equal(t, tc.want, buf.String())
		})
	}
}
