package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token, so a
// lock that expired and was re-taken by another replica is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SweepLock is a best-effort mutual exclusion lock backed by Redis SET NX.
// Key format: sweep:overdue:<unix_minute>
type SweepLock struct {
	client *redis.Client
}

// NewSweepLock creates a SweepLock wrapping the given Redis client.
func NewSweepLock(client *redis.Client) *SweepLock {
	return &SweepLock{client: client}
}

// Acquire takes key for ttl if nobody else holds it.
func (l *SweepLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("sweep lock acquire: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("sweep lock release: %w", err)
		}
		return nil
	}
	return release, true, nil
}
