package util

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, "catalog-test"), mr
}

func TestRedisLocker_AcquireIsExclusive(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	token, ok, err := locker.Acquire(ctx, "review-lock:u:p", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)
	assert.True(t, mr.Exists("review-lock:u:p"))

	_, ok, err = locker.Acquire(ctx, "review-lock:u:p", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLocker_ReleaseAllowsReacquire(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	token, ok, err := locker.Acquire(ctx, "review-lock:u:p", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, locker.Release(ctx, "review-lock:u:p", token))
	assert.False(t, mr.Exists("review-lock:u:p"))

	_, ok, err = locker.Acquire(ctx, "review-lock:u:p", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_ReleaseWithStaleTokenKeepsLock(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	_, ok, err := locker.Acquire(ctx, "review-lock:u:p", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, locker.Release(ctx, "review-lock:u:p", "someone-else"))
	assert.True(t, mr.Exists("review-lock:u:p"))
}

func TestRedisLocker_LockExpires(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	_, ok, err := locker.Acquire(ctx, "review-lock:u:p", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	_, ok, err = locker.Acquire(ctx, "review-lock:u:p", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_BackendDown(t *testing.T) {
	locker, mr := newTestLocker(t)
	mr.Close()

	_, ok, err := locker.Acquire(context.Background(), "review-lock:u:p", time.Second)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestKeyPrefix(t *testing.T) {
	assert.Equal(t, "review-lock", keyPrefix("review-lock:a:b"))
	assert.Equal(t, "plain", keyPrefix("plain"))
}
