package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares attempts across gate instances. Claim uses GETDEL so
// two concurrent callbacks with the same state cannot both succeed.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "oauth_state:",
	}
}

func (r *RedisStore) key(state string) string {
	return r.prefix + state
}

func (r *RedisStore) Put(ctx context.Context, a Attempt, ttl time.Duration) error {
	if a.State == "" {
		return errors.New("pending: missing state")
	}
	if ttl <= 0 {
		return errors.New("pending: ttl must be positive")
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("pending: failed to marshal: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(a.State), data, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("pending: state collision")
	}
	return nil
}

func (r *RedisStore) Claim(ctx context.Context, state string) (*Attempt, error) {
	val, err := r.client.GetDel(ctx, r.key(state)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var a Attempt
	if err := json.Unmarshal([]byte(val), &a); err != nil {
		return nil, fmt.Errorf("pending: failed to unmarshal: %w", err)
	}
	return &a, nil
}
