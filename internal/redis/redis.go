package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

type Client struct {
	*goredis.Client
}

// New connects to Redis and pings it, so a bad address fails at startup
// instead of on the first login. addr is either host:port or a
// redis:// / rediss:// URL; password overrides the one in the URL.
func New(ctx context.Context, addr, password string) (*Client, error) {
	opts, err := options(addr, password)
	if err != nil {
		return nil, err
	}

	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}
	return &Client{Client: client}, nil
}

func options(addr, password string) (*goredis.Options, error) {
	opts := &goredis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := goredis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("redis: parse url: %w", err)
		}
		opts = parsed
	}
	if password != "" {
		opts.Password = password
	}
	return opts, nil
}
