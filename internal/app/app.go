package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"auth-gate/internal/config"
)

// App owns the HTTP server and the backends behind it.
type App struct {
	server  *http.Server
	closers []func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	router, closeInfra, err := setupHTTP(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		server: &http.Server{
			Addr:              ":" + cfg.AppPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		closers: []func() error{closeInfra},
	}, nil
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until Shutdown is called. A clean shutdown is not an error.
func (a *App) Run() error {
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests, then releases the backends.
func (a *App) Shutdown(ctx context.Context) error {
	errs := []error{a.server.Shutdown(ctx)}
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}
