package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore keeps sessions in Redis so several gate instances share
// them. A key lives exactly as long as its session's effective deadline.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Create fails on an id collision.
func (r *RedisStore) Create(ctx context.Context, s Session) error {
	if s.SessionID == "" || s.Identity.ID == "" {
		return fmt.Errorf("session: missing session_id or identity")
	}
	if time.Until(s.ExpiresAt) <= 0 {
		return fmt.Errorf("session: expires_at must be in the future")
	}

	err := r.write(ctx, s, "NX")
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("session: id collision")
	}
	return err
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	raw, err := r.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", sessionID, err)
	}
	return &s, nil
}

// Update only overwrites a key that still exists, so a touch racing a
// logout cannot bring the session back.
func (r *RedisStore) Update(ctx context.Context, s Session) error {
	if s.SessionID == "" {
		return fmt.Errorf("session: missing session_id")
	}
	if time.Until(s.ExpiresAt) <= 0 {
		return r.Delete(ctx, s.SessionID)
	}

	err := r.write(ctx, s, "XX")
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, keyPrefix+sessionID).Err()
}

// write stores s with the given SET mode. redis.Nil means the mode
// condition did not hold.
func (r *RedisStore) write(ctx context.Context, s Session, mode string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}

	return r.client.SetArgs(ctx, keyPrefix+s.SessionID, data, redis.SetArgs{
		Mode: mode,
		TTL:  time.Until(s.ExpiresAt),
	}).Err()
}
