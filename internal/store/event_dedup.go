/**
 * @description
 * This file implements the seen-event store that deduplicates Bridge webhook
 * deliveries. Bridge may deliver the same event more than once and out of
 * order, so the webhook handler marks every event_id before processing it.
 *
 * Key features:
 * - Backed by Redis SET NX with a TTL, so deduplication works across
 *   replicas without any shared in-process state.
 * - Returns webhook.DuplicateEventError when the event_id was already seen,
 *   which the handler acknowledges without reprocessing.
 *
 * @dependencies
 * - github.com/redis/go-redis/v9: Redis client.
 */
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sendapp/bridge-service/internal/webhook"
)

// DefaultEventDedupTTL is how long a processed event_id is remembered.
// Bridge retries failed deliveries for around a day, so 24h covers the
// redelivery window.
const DefaultEventDedupTTL = 24 * time.Hour

// RedisEventDedup is the Redis implementation of webhook event
// deduplication.
type RedisEventDedup struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisEventDedup creates a new RedisEventDedup with the given key prefix.
func NewRedisEventDedup(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisEventDedup {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = "bridge:webhook_events"
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")

	if ttl <= 0 {
		ttl = DefaultEventDedupTTL
	}

	return &RedisEventDedup{
		client: client,
		prefix: trimmedPrefix,
		ttl:    ttl,
	}
}

// MarkProcessed records the event_id and returns *webhook.DuplicateEventError
// when it was recorded before within the TTL window.
func (d *RedisEventDedup) MarkProcessed(ctx context.Context, eventID string) error {
	key := fmt.Sprintf("%s:%s", d.prefix, eventID)
	set, err := d.client.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to record webhook event id: %w", err)
	}
	if !set {
		return &webhook.DuplicateEventError{EventID: eventID}
	}
	return nil
}
