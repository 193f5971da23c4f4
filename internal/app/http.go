package app

import (
	"context"
	"net/http"

	"auth-gate/internal/auth/gate"
	"auth-gate/internal/auth/handler"
	"auth-gate/internal/auth/provider"
	"auth-gate/internal/auth/provider/generic"
	"auth-gate/internal/auth/provider/google"
	"auth-gate/internal/config"
	"auth-gate/internal/metrics"
	"auth-gate/internal/middleware"
	"auth-gate/internal/pending"
	"auth-gate/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	p, err := setupProvider(ctx, cfg)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := newRouter(cfg, Deps{
		Provider: p,
		Sessions: infra.Sessions,
		Attempts: infra.Attempts,
		Registry: reg,
	})

	return router, infra.Close, nil
}

// setupProvider builds only the configured provider; discovery needs the
// network, so unused providers are never contacted.
func setupProvider(ctx context.Context, cfg config.Config) (provider.OAuthProvider, error) {
	var (
		p   provider.OAuthProvider
		err error
	)
	switch cfg.IdentityProvider {
	case config.ProviderGoogle:
		p, err = google.New(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.CallbackURL())
	case config.ProviderOIDC:
		p, err = generic.New(ctx, generic.Config{
			Issuer:        cfg.OIDCIssuer,
			ClientID:      cfg.OIDCClientID,
			ClientSecret:  cfg.OIDCClientSecret,
			RedirectURL:   cfg.CallbackURL(),
			PublicBaseURL: cfg.OIDCPublicBaseURL,
		})
	}
	if err != nil {
		return nil, err
	}

	registry := provider.NewRegistry()
	if p != nil {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	return registry.Get(cfg.IdentityProvider)
}

// Deps are the collaborators the router is built from.
type Deps struct {
	Provider provider.OAuthProvider
	Sessions session.Store
	Attempts pending.Store
	Registry *prometheus.Registry
}

func newRouter(cfg config.Config, deps Deps) *gin.Engine {

	// ----------------------------
	// Dependencies
	// ----------------------------

	sessionManager := session.NewManager(deps.Sessions, session.Policy{
		IdleTimeout:     cfg.SessionIdleTimeout,
		AbsoluteTimeout: cfg.SessionAbsoluteTimeout,
	})

	authGate := gate.New(deps.Provider, deps.Attempts, sessionManager, gate.Options{
		AttemptTTL:      cfg.LoginAttemptTTL,
		ExchangeTimeout: cfg.ExchangeTimeout,
	})

	authHandler := handler.NewHandler(authGate, metrics.New(deps.Registry), handler.Options{
		FrontendOrigin: cfg.FrontendOrigin,
		SessionSecret:  []byte(cfg.SessionSecret),
		Cookie: session.CookieOptions{
			Secure:   cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		},
	})

	authMiddleware := middleware.NewAuthMiddleware(authGate, authHandler.SessionCookie())

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendOrigin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "auth-gate backend")
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.RequireIdentity(authMiddleware))

	api.GET("/profile", func(c *gin.Context) {
		identity, _ := c.Get(middleware.ContextIdentityKey)
		c.JSON(http.StatusOK, gin.H{"user": identity})
	})

	return router
}
