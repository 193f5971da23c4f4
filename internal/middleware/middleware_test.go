package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auth-gate/internal/auth"
	"auth-gate/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("middleware-secret-middleware-sec")

type stubResolver struct {
	sessions map[string]auth.Identity
	err      error
}

func (s stubResolver) WhoAmI(_ context.Context, id string) (*auth.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	identity, ok := s.sessions[id]
	if !ok {
		return nil, auth.ErrNotAuthenticated
	}
	return &identity, nil
}

func newRouter(resolver Resolver, cookie *session.SignedCookie) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLog())
	api := r.Group("/api")
	api.Use(RequireIdentity(NewAuthMiddleware(resolver, cookie)))
	api.GET("/profile", func(c *gin.Context) {
		identity, _ := c.Get(ContextIdentityKey)
		c.JSON(http.StatusOK, identity)
	})
	return r
}

func signedRequest(t *testing.T, cookie *session.SignedCookie, sessionID string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, cookie.Set(rec, sessionID, time.Now().Add(time.Hour)))

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestRequireAuthAttachesIdentity(t *testing.T) {
	cookie := session.NewSignedCookie("session", secret, time.Hour, session.CookieOptions{})
	resolver := stubResolver{sessions: map[string]auth.Identity{
		"sid": {ID: "u1", DisplayName: "Ada"},
	}}
	r := newRouter(resolver, cookie)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, signedRequest(t, cookie, "sid"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"displayName":"Ada"`)
}

func TestRequireAuthRejects(t *testing.T) {
	cookie := session.NewSignedCookie("session", secret, time.Hour, session.CookieOptions{})
	r := newRouter(stubResolver{}, cookie)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, signedRequest(t, cookie, "unknown"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthStoreFailure(t *testing.T) {
	cookie := session.NewSignedCookie("session", secret, time.Hour, session.CookieOptions{})
	r := newRouter(stubResolver{err: errors.New("store down")}, cookie)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, signedRequest(t, cookie, "sid"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestLogSetsRequestID(t *testing.T) {
	cookie := session.NewSignedCookie("session", secret, time.Hour, session.CookieOptions{})
	r := newRouter(stubResolver{}, cookie)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	given := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set(RequestIDHeader, given)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, given, rec.Header().Get(RequestIDHeader))
}
