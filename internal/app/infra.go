package app

import (
	"context"
	"time"

	"auth-gate/internal/config"
	"auth-gate/internal/logger"
	"auth-gate/internal/pending"
	"auth-gate/internal/redis"
	"auth-gate/internal/session"
)

const sweepInterval = time.Minute

// Infra holds the session and attempt backends selected by config.
type Infra struct {
	Sessions session.Store
	Attempts pending.Store
	Redis    *redis.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	if cfg.SessionBackend == config.BackendRedis {
		redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}

		logger.Info("redis ready", map[string]any{
			"addr": cfg.RedisAddr,
		})

		return &Infra{
			Sessions: session.NewRedisStore(redisClient.Client),
			Attempts: pending.NewRedisStore(redisClient.Client),
			Redis:    redisClient,
		}, nil
	}

	if cfg.Release() {
		logger.Warn("in-memory session store selected; sessions are lost on restart and not shared between instances", nil)
	}

	sessions := session.NewMemoryStore()
	attempts := pending.NewMemoryStore()

	go sessions.Run(ctx, sweepInterval)
	go attempts.Run(ctx, sweepInterval)

	return &Infra{
		Sessions: sessions,
		Attempts: attempts,
	}, nil
}

func (i *Infra) Close() error {
	if i.Redis != nil {
		return i.Redis.Close()
	}
	return nil
}
