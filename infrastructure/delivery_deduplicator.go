package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultDeliveryTTL bounds how long a processed webhook delivery is remembered
const DefaultDeliveryTTL = 7 * 24 * time.Hour

// RedisDeliveryDeduplicator remembers processed webhook deliveries in Redis.
// Key format: webhook:delivery:<source>:<delivery id>
type RedisDeliveryDeduplicator struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisDeliveryDeduplicator creates a deduplicator; a non-positive ttl uses DefaultDeliveryTTL
func NewRedisDeliveryDeduplicator(client redis.Cmdable, ttl time.Duration) *RedisDeliveryDeduplicator {
	if ttl <= 0 {
		ttl = DefaultDeliveryTTL
	}
	return &RedisDeliveryDeduplicator{client: client, ttl: ttl}
}

// IsDuplicate reports whether the delivery was already processed
func (d *RedisDeliveryDeduplicator) IsDuplicate(ctx context.Context, source, deliveryID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(source, deliveryID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check delivery %s/%s: %w", source, deliveryID, err)
	}
	return n > 0, nil
}

// Mark records the delivery as processed
func (d *RedisDeliveryDeduplicator) Mark(ctx context.Context, source, deliveryID string) error {
	if err := d.client.Set(ctx, d.key(source, deliveryID), "1", d.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark delivery %s/%s: %w", source, deliveryID, err)
	}
	return nil
}

func (d *RedisDeliveryDeduplicator) key(source, deliveryID string) string {
	return fmt.Sprintf("webhook:delivery:%s:%s", source, deliveryID)
}
