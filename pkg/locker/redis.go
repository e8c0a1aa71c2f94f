package locker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLocker implements DistributedLocker using the Redsync library,
// which implements the Redlock algorithm for distributed mutual exclusion.
type RedisLocker struct {
	rs      *redsync.Redsync
	logger  *zap.Logger
	mutexes map[string]*redsync.Mutex
	mu      sync.Mutex
}

// NewRedisLocker creates a new Redis-based distributed locker using Redsync.
//
// The Redlock algorithm is described in the Redis documentation:
// https://redis.io/docs/latest/develop/use/patterns/distributed-locks/
func NewRedisLocker(client *redis.Client, logger *zap.Logger) *RedisLocker {
	pool := goredis.NewPool(client)
	rs := redsync.New(pool)

	return &RedisLocker{
		rs:      rs,
		logger:  logger,
		mutexes: make(map[string]*redsync.Mutex),
	}
}

// Acquire attempts to acquire a distributed lock using the Redlock algorithm.
// Returns true if the lock was acquired, false if another instance holds it.
// The lock expires after ttl if not released, preventing deadlocks when the
// holder crashes.
func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	// Single try: lock contention is the normal case, not worth retrying
	mutex := r.rs.NewMutex(
		key,
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
	)

	err := mutex.LockContext(ctx)
	if err != nil {
		// Redsync reports contention either as ErrFailed or as a wrapped
		// "lock already taken" message depending on the node count
		if err == redsync.ErrFailed || strings.Contains(err.Error(), "lock already taken") {
			r.logger.Debug("lock already held by another instance",
				zap.String("key", key),
			)
			return false, nil
		}

		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	r.mu.Lock()
	r.mutexes[key] = mutex
	r.mu.Unlock()

	r.logger.Debug("lock acquired",
		zap.String("key", key),
		zap.Duration("ttl", ttl),
	)

	return true, nil
}

// Release releases the lock if and only if this instance owns it.
// Redsync verifies the lock token internally, so releasing a lock held by
// another instance is a safe no-op.
func (r *RedisLocker) Release(ctx context.Context, key string) error {
	r.mu.Lock()
	mutex, exists := r.mutexes[key]
	if exists {
		delete(r.mutexes, key)
	}
	r.mu.Unlock()

	if !exists {
		r.logger.Debug("no mutex found for key, lock not owned by this instance",
			zap.String("key", key),
		)
		return nil
	}

	ok, err := mutex.UnlockContext(ctx)
	if err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}

	if !ok {
		r.logger.Debug("lock not owned by this instance or already expired",
			zap.String("key", key),
		)
	}

	return nil
}
