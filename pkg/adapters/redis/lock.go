package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// ErrLockNotHeld is returned by an UnlockFunc when the lock expired or was taken over.
var ErrLockNotHeld = errors.New("distributed lock no longer held")

// DefaultRetryInterval is how often a contended lock is retried.
const DefaultRetryInterval = 50 * time.Millisecond

// unlockScript deletes the key only if it still holds our token.
var unlockScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// refreshScript extends the key's expiry only if it still holds our token.
var refreshScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`)

// Locker implements ports.DistributedLocker using Redis SET NX PX.
type Locker struct {
	client *backend.Client
	prefix string
	retry  time.Duration
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
		retry:  DefaultRetryInterval,
	}
}

// Lock blocks until the lock for key is acquired or ctx is done.
// While held, the lock is refreshed every ttl/3 so a long turn cannot outlive it;
// ttl only bounds how long a crashed holder blocks others.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			stop := l.keepAlive(lockKey, token, ttl)
			return func(ctx context.Context) error {
				stop()
				n, err := unlockScript.Run(ctx, l.client, []string{lockKey}, token).Int()
				if err != nil {
					return fmt.Errorf("redis error releasing lock: %w", err)
				}
				if n == 0 {
					return ErrLockNotHeld
				}
				return nil
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// keepAlive refreshes the lock until the returned stop function is called
// or the lock is found to belong to someone else.
func (l *Locker) keepAlive(key, token string, ttl time.Duration) (stop func()) {
	interval := ttl / 3
	if interval <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := refreshScript.Run(ctx, l.client, []string{key}, token, ttl.Milliseconds()).Int()
				if err == nil && n == 0 {
					return
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
