package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultLockKey is the Redis key holding the scrape lock.
const DefaultLockKey = "aggregator:scrape:lock"

// releaseScript deletes the key only if it still belongs to the caller.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock is a SETNX lock with an expiry so a crashed holder cannot
// block scraping forever.
type RedisLock struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewRedisLock returns a lock on key that expires after ttl.
func NewRedisLock(rdb *redis.Client, key string, ttl time.Duration) *RedisLock {
	return &RedisLock{rdb: rdb, key: key, ttl: ttl}
}

// Acquire implements Locker.
func (l *RedisLock) Acquire(ctx context.Context, owner string) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, l.key, owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis SETNX %s: %w", l.key, err)
	}
	return ok, nil
}

// Release implements Locker.
func (l *RedisLock) Release(ctx context.Context, owner string) error {
	if err := releaseScript.Run(ctx, l.rdb, []string{l.key}, owner).Err(); err != nil {
		return fmt.Errorf("redis release %s: %w", l.key, err)
	}
	return nil
}
