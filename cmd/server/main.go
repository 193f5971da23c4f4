package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth-gate/internal/app"
	"auth-gate/internal/config"
	"auth-gate/internal/logger"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	logger.Init(!cfg.Release())
	defer logger.Sync()

	if err != nil {
		// never serve traffic without a usable provider
		logger.Fatal("invalid configuration", map[string]any{
			"error": err.Error(),
		})
	}

	if err := run(cfg); err != nil {
		logger.Fatal("auth-gate failed", map[string]any{
			"error": err.Error(),
		})
	}
}

func run(cfg config.Config) error {
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- application.Run()
	}()

	logger.Info("auth-gate started", map[string]any{
		"port":            cfg.AppPort,
		"provider":        cfg.IdentityProvider,
		"callback_url":    cfg.CallbackURL(),
		"frontend_origin": cfg.FrontendOrigin,
		"session_backend": cfg.SessionBackend,
	})

	var runErr error
	select {
	case runErr = <-serveErr:
	case <-ctx.Done():
		logger.Info("shutdown signal received", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}

	logger.Info("auth-gate stopped", nil)
	return nil
}
