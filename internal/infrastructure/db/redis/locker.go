package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/trackflow/tracking-service/internal/core/domain"
)

const (
	defaultLockTTL   = 30 * time.Second
	lockRetryBackoff = 50 * time.Millisecond
)

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock re-acquired by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker serializes refreshes of one tracking number across instances.
// Key format: lock:tracking:<tracking_number>
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLocker creates a Locker wrapping the given Redis client. The TTL bounds
// how long a crashed holder can block others.
func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Locker{client: client, ttl: ttl}
}

// Lock waits until the key is acquired, ctx ends, or one TTL has passed.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	redisKey := l.key(key)
	deadline := time.Now().Add(l.ttl)

	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(domain.ErrLockNotAcquired, err)
		}
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Join(domain.ErrLockNotAcquired, ctx.Err())
			}
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			return func() {
				// Release with a fresh context so a cancelled request still frees the lock.
				releaseCtx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
				defer cancel()
				_ = releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err()
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, domain.ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(domain.ErrLockNotAcquired, ctx.Err())
		case <-time.After(lockRetryBackoff):
		}
	}
}

func (l *Locker) key(trackingNumber string) string {
	return "lock:tracking:" + trackingNumber
}
