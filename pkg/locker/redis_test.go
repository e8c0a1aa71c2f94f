package locker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testLockKey = "recalc:scheduler:lock"

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client, func()) {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}

	return mr, client, cleanup
}

func TestRedisLocker_Acquire_Success(t *testing.T) {
	_, client, cleanup := setupTestRedis(t)
	defer cleanup()

	locker := NewRedisLocker(client, zap.NewNop())

	ctx := context.Background()
	acquired, err := locker.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired, "First acquisition should succeed")
}

func TestRedisLocker_Acquire_AlreadyHeld(t *testing.T) {
	_, client, cleanup := setupTestRedis(t)
	defer cleanup()

	locker1 := NewRedisLocker(client, zap.NewNop())
	locker2 := NewRedisLocker(client, zap.NewNop())

	ctx := context.Background()

	acquired1, err := locker1.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired1)

	// Second instance must back off while the lock is held
	acquired2, _ := locker2.Acquire(ctx, testLockKey, 5*time.Second)
	assert.False(t, acquired2, "Second acquisition should fail when lock is held")
}

func TestRedisLocker_Release_Success(t *testing.T) {
	_, client, cleanup := setupTestRedis(t)
	defer cleanup()

	locker := NewRedisLocker(client, zap.NewNop())

	ctx := context.Background()

	acquired, err := locker.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	err = locker.Release(ctx, testLockKey)
	require.NoError(t, err)

	// Should be able to acquire again after release
	acquired2, err := locker.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired2)
}

func TestRedisLocker_Release_NotOwned(t *testing.T) {
	_, client, cleanup := setupTestRedis(t)
	defer cleanup()

	locker1 := NewRedisLocker(client, zap.NewNop())
	locker2 := NewRedisLocker(client, zap.NewNop())

	ctx := context.Background()

	acquired, err := locker1.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	// A different instance releasing is a no-op, not an error
	err = locker2.Release(ctx, testLockKey)
	require.NoError(t, err)

	// The lock is still held by locker1
	acquired2, _ := locker2.Acquire(ctx, testLockKey, 5*time.Second)
	assert.False(t, acquired2)
}

func TestRedisLocker_CooldownExpiry(t *testing.T) {
	mr, client, cleanup := setupTestRedis(t)
	defer cleanup()

	locker := NewRedisLocker(client, zap.NewNop())

	ctx := context.Background()
	cooldown := 15 * time.Minute

	// Hold the lock for the full cooldown without releasing
	acquired, err := locker.Acquire(ctx, testLockKey, cooldown)
	require.NoError(t, err)
	require.True(t, acquired)

	acquired2, _ := locker.Acquire(ctx, testLockKey, cooldown)
	assert.False(t, acquired2, "Lock should still be held during cooldown")

	// Once the cooldown elapses the lock frees itself
	mr.FastForward(cooldown + time.Second)

	acquired3, err := locker.Acquire(ctx, testLockKey, cooldown)
	require.NoError(t, err)
	assert.True(t, acquired3, "Lock should be acquirable after cooldown expiry")
}
