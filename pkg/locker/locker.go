// Package locker provides distributed locking for coordinating recalculation
// sweeps across multiple service instances.
package locker

import (
	"context"
	"time"
)

// DistributedLocker provides distributed lock capabilities across multiple instances.
// Implementations must be safe for concurrent use.
//
// The scheduler uses the TTL as a cooldown: after a successful sweep the lock is
// held for the full recalculation interval so that no other instance repeats the
// work, and after a failed sweep it is released so another instance can retry.
type DistributedLocker interface {
	// Acquire attempts to acquire a distributed lock with the given key.
	// Returns true if the lock was acquired, false if another instance holds it.
	// The lock will automatically expire after ttl if not released.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release releases the lock identified by key.
	// Safe to call even if this instance doesn't own the lock (no-op).
	Release(ctx context.Context, key string) error
}
