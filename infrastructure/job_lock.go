package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// releaseScript deletes the lock only if this holder still owns it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisJobLock is a single-holder lock built on SET NX PX
type RedisJobLock struct {
	client *redis.Client
}

// NewRedisJobLock creates a job lock backed by the given client
func NewRedisJobLock(client *redis.Client) *RedisJobLock {
	return &RedisJobLock{client: client}
}

// TryAcquire takes the named lock for ttl. It returns a nil release func when
// another holder owns the lock.
func (l *RedisJobLock) TryAcquire(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	key := "lock:" + name
	token := uuid.New().String()

	acquired, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	if !acquired {
		return nil, nil
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			log.WithFields(log.Fields{
				"lock":  name,
				"error": err,
			}).Warn("Failed to release job lock")
		}
	}

	return release, nil
}
