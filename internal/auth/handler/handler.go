package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"auth-gate/internal/auth"
	"auth-gate/internal/auth/gate"
	"auth-gate/internal/logger"
	"auth-gate/internal/metrics"
	"auth-gate/internal/session"

	"github.com/gin-gonic/gin"
)

type Options struct {
	// FrontendOrigin receives the browser after the callback.
	FrontendOrigin string

	// SessionSecret signs the session and state cookies.
	SessionSecret []byte

	// Cookie carries the Secure/SameSite/Domain flags for both cookies.
	Cookie session.CookieOptions
}

type Handler struct {
	gate     *gate.Gate
	metrics  *metrics.Metrics
	sessions *session.SignedCookie
	states   *session.SignedCookie

	homeURL  string
	errorURL string
}

func NewHandler(g *gate.Gate, m *metrics.Metrics, opts Options) *Handler {
	policy := g.SessionPolicy()

	return &Handler{
		gate:     g,
		metrics:  m,
		sessions: NewSessionCookie(opts.SessionSecret, policy.AbsoluteTimeout, opts.Cookie),
		states:   newStateCookie(opts.SessionSecret, g.AttemptTTL(), opts.Cookie),
		homeURL:  homeURL(opts.FrontendOrigin),
		errorURL: errorURL(opts.FrontendOrigin),
	}
}

// NewSessionCookie returns the codec for the session cookie. The
// middleware package uses the same codec to read it.
func NewSessionCookie(secret []byte, lifetime time.Duration, opts session.CookieOptions) *session.SignedCookie {
	return session.NewSignedCookie(session.NameFor(opts.Secure), secret, lifetime, opts)
}

// SessionCookie exposes the session cookie codec.
func (h *Handler) SessionCookie() *session.SignedCookie {
	return h.sessions
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/auth/start", h.startLogin)
	r.GET("/auth/callback", h.callback)
	r.GET("/whoami", h.whoAmI)
	r.POST("/logout", h.logout)

	// original route names; /me wraps the Identity shape, not the old profile
	r.GET("/auth/google", h.startLogin)
	r.GET("/auth/google/callback", h.callback)
	r.GET("/me", h.me)
}

func (h *Handler) startLogin(c *gin.Context) {
	login, err := h.gate.StartLogin(c.Request.Context())
	if err != nil {
		logger.Error("start login failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "login unavailable",
		})
		return
	}

	if err := h.states.Set(c.Writer, login.State, login.ExpiresAt); err != nil {
		logger.Error("state cookie encode failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "login unavailable",
		})
		return
	}

	h.metrics.LoginsStarted.Inc()
	c.Redirect(http.StatusFound, login.URL)
}

func (h *Handler) callback(c *gin.Context) {
	browserState := h.states.Read(c.Request)

	// The attempt is single-use whatever happens next.
	h.states.Clear(c.Writer)

	sess, err := h.gate.HandleCallback(c.Request.Context(), gate.Callback{
		Code:           c.Query("code"),
		State:          c.Query("state"),
		BrowserState:   browserState,
		ProviderError:  c.Query("error"),
		PriorSessionID: h.sessions.Read(c.Request),
	})
	if err != nil {
		h.callbackFailed(c, err)
		return
	}

	if err := h.sessions.Set(c.Writer, sess.SessionID, sess.AbsoluteExpiresAt); err != nil {
		if logoutErr := h.gate.Logout(c.Request.Context(), sess.SessionID); logoutErr != nil {
			logger.Error("orphaned session not destroyed", map[string]any{
				"error": logoutErr.Error(),
			})
		}
		h.callbackFailed(c, err)
		return
	}

	h.metrics.Callbacks.WithLabelValues(metrics.ResultOK).Inc()
	logger.Info("session established", map[string]any{
		"ip": c.ClientIP(),
	})

	c.Redirect(http.StatusFound, h.homeURL)
}

func (h *Handler) callbackFailed(c *gin.Context, err error) {
	fields := map[string]any{
		"error": err.Error(),
		"ip":    c.ClientIP(),
	}

	switch {
	case errors.Is(err, auth.ErrCsrfMismatch):
		h.metrics.Callbacks.WithLabelValues(metrics.ResultCsrfMismatch).Inc()
		logger.Warn("oauth callback rejected", fields)
	case errors.Is(err, auth.ErrUpstreamAuth):
		// the gate already ended the prior session
		h.sessions.Clear(c.Writer)
		h.metrics.Callbacks.WithLabelValues(metrics.ResultUpstreamError).Inc()
		logger.Warn("oauth provider login failed", fields)
	case errors.Is(err, auth.ErrConfiguration):
		h.metrics.Callbacks.WithLabelValues(metrics.ResultConfigError).Inc()
		logger.Error("oauth callback failed", fields)
	default:
		h.metrics.Callbacks.WithLabelValues(metrics.ResultStoreError).Inc()
		logger.Error("oauth callback failed", fields)
	}

	c.Redirect(http.StatusFound, h.errorURL)
}

func (h *Handler) whoAmI(c *gin.Context) {
	identity, ok := h.resolve(c, "not authenticated")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, identity)
}

// me mirrors whoami, wrapping the identity as {"user": ...}.
func (h *Handler) me(c *gin.Context) {
	identity, ok := h.resolve(c, "Not logged in")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": identity})
}

func (h *Handler) resolve(c *gin.Context, unauthorized string) (*auth.Identity, bool) {
	identity, err := h.gate.WhoAmI(c.Request.Context(), h.sessions.Read(c.Request))
	switch {
	case err == nil:
		h.metrics.WhoAmI.WithLabelValues(metrics.ResultOK).Inc()
		return identity, true
	case errors.Is(err, auth.ErrNotAuthenticated):
		h.metrics.WhoAmI.WithLabelValues(metrics.ResultUnauthorized).Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": unauthorized})
		return nil, false
	default:
		h.metrics.WhoAmI.WithLabelValues(metrics.ResultStoreError).Inc()
		logger.Error("session lookup failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session store unavailable"})
		return nil, false
	}
}

func (h *Handler) logout(c *gin.Context) {
	sessionID := h.sessions.Read(c.Request)

	if err := h.gate.Logout(c.Request.Context(), sessionID); err != nil {
		// Keep the cookie: the server may still hold the session.
		h.metrics.Logouts.WithLabelValues(metrics.ResultStoreError).Inc()
		logger.Error("logout failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to destroy session"})
		return
	}

	h.sessions.Clear(c.Writer)
	h.metrics.Logouts.WithLabelValues(metrics.ResultOK).Inc()

	if sessionID != "" {
		logger.Info("session destroyed", map[string]any{
			"ip": c.ClientIP(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func homeURL(origin string) string {
	origin = strings.TrimRight(origin, "/")
	if origin == "" {
		return "/"
	}
	return origin
}

func errorURL(origin string) string {
	q := url.Values{}
	q.Set("error", "auth")
	return strings.TrimRight(origin, "/") + "/?" + q.Encode()
}
