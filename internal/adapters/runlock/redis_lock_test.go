package runlock

import (
	"context"
	"testing"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLock(t *testing.T, ttl time.Duration) (*RedisRunLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	lock, err := NewRedisRunLock(client, ttl)
	require.NoError(t, err)
	return lock, mr
}

func TestNewRedisRunLock_Validation(t *testing.T) {
	_, err := NewRedisRunLock(nil, time.Second)
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	_, err = NewRedisRunLock(client, 0)
	assert.Error(t, err)
}

func TestRedisRunLock_SecondAcquireFails(t *testing.T) {
	lock, mr := newTestRedisLock(t, time.Minute)
	ctx := context.Background()

	lockCtx, release, err := lock.Acquire(ctx, "reconcile")
	require.NoError(t, err)
	assert.True(t, mr.Exists("reconcile"))

	_, _, err = lock.Acquire(ctx, "reconcile")
	assert.ErrorIs(t, err, domain.ErrReconcileInProgress)

	release(ctx)
	assert.ErrorIs(t, lockCtx.Err(), context.Canceled)
	assert.NotErrorIs(t, context.Cause(lockCtx), domain.ErrRunLockLost)
	assert.False(t, mr.Exists("reconcile"))

	_, again, err := lock.Acquire(ctx, "reconcile")
	require.NoError(t, err)
	again(ctx)
}

func TestRedisRunLock_KeepsLockAlive(t *testing.T) {
	lock, mr := newTestRedisLock(t, 200*time.Millisecond)
	ctx := context.Background()

	lockCtx, release, err := lock.Acquire(ctx, "reconcile")
	require.NoError(t, err)
	defer release(ctx)

	time.Sleep(500 * time.Millisecond)

	assert.NoError(t, lockCtx.Err())
	assert.True(t, mr.Exists("reconcile"))
}

func TestRedisRunLock_LostLockCancelsContext(t *testing.T) {
	lock, mr := newTestRedisLock(t, 200*time.Millisecond)
	ctx := context.Background()

	lockCtx, release, err := lock.Acquire(ctx, "reconcile")
	require.NoError(t, err)
	defer release(ctx)

	mr.Del("reconcile")

	require.Eventually(t, func() bool { return lockCtx.Err() != nil }, 2*time.Second, 20*time.Millisecond)
	assert.ErrorIs(t, context.Cause(lockCtx), domain.ErrRunLockLost)
}
