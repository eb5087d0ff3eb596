package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes turns of the same conversation across replicas.
// session.Manager always takes its in-process lock first, so a locker only has
// to arbitrate between processes.
type DistributedLocker interface {
	// Lock blocks until the conversation key is held or ctx is done.
	// A live holder keeps the lock until the returned UnlockFunc is called;
	// ttl bounds how long the lock survives a holder that died.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
