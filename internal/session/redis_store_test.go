package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	sess := Session{
		SessionID: "abc",
		Identity:  testIdentity("u1"),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Create(ctx, sess))
	assert.True(t, mr.Exists("session:abc"))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sess.Identity, got.Identity)

	require.NoError(t, store.Delete(ctx, "abc"))
	got, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, Session{SessionID: "abc", Identity: testIdentity("u1"), ExpiresAt: time.Now().Add(time.Minute)}))

	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreRejectsPastExpiry(t *testing.T) {
	store, _ := newRedisStore(t)

	err := store.Create(context.Background(), Session{SessionID: "abc", Identity: testIdentity("u1"), ExpiresAt: time.Now().Add(-time.Second)})
	assert.Error(t, err)
}

func TestRedisStoreUpdateDoesNotResurrect(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	sess := Session{SessionID: "abc", Identity: testIdentity("u1"), ExpiresAt: time.Now().Add(time.Hour)}

	require.NoError(t, store.Create(ctx, sess))
	require.NoError(t, store.Delete(ctx, "abc"))
	require.NoError(t, store.Update(ctx, sess))
	assert.False(t, mr.Exists("session:abc"))
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	_, err := store.Get(context.Background(), "abc")
	assert.Error(t, err)
}

func TestRedisStoreRejectsCollision(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()
	sess := Session{SessionID: "abc", Identity: testIdentity("u1"), ExpiresAt: time.Now().Add(time.Hour)}

	require.NoError(t, store.Create(ctx, sess))
	assert.Error(t, store.Create(ctx, sess))
}

func TestRedisStoreUpdateExtendsTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	sess := Session{SessionID: "abc", Identity: testIdentity("u1"), ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, store.Create(ctx, sess))

	sess.ExpiresAt = time.Now().Add(time.Hour)
	require.NoError(t, store.Update(ctx, sess))

	assert.Greater(t, mr.TTL("session:abc"), 30*time.Minute)
}
