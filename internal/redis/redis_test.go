package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPings(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := New(context.Background(), mr.Addr(), "")
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	assert.True(t, mr.Exists("k"))
}

func TestNewUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), addr, "")
	assert.Error(t, err)
}

func TestNewURLWithPassword(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("hunter2")

	_, err := New(context.Background(), "redis://"+mr.Addr()+"/0", "")
	assert.Error(t, err)

	client, err := New(context.Background(), "redis://"+mr.Addr()+"/0", "hunter2")
	require.NoError(t, err)
	assert.NoError(t, client.Close())
}

func TestNewBadURL(t *testing.T) {
	_, err := New(context.Background(), "redis://:bad:port/x", "")
	assert.Error(t, err)
}
