package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	dom "github.com/stayhub/hotel-booking-svc/internal/domain/booking"
	"github.com/stayhub/hotel-booking-svc/internal/infrastructure/redis"
)

const keyPrefix = "idem:"

// IdempotencyCache maps request IDs to booking IDs in Redis. A miss is
// not an answer: callers fall through to the ledger's unique request_id
// lookup, so a flushed cache only costs one extra query.
type IdempotencyCache struct {
	client *redis.Client
}

func NewIdempotencyCache(client *redis.Client) dom.IdempotencyCache {
	return &IdempotencyCache{client: client}
}

func (c *IdempotencyCache) Get(ctx context.Context, requestID string) (string, bool, error) {
	bookingID, err := c.client.Get(ctx, keyPrefix+requestID).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return bookingID, true, nil
}

func (c *IdempotencyCache) Set(ctx context.Context, requestID, bookingID string, ttl time.Duration) error {
	return c.client.Set(ctx, keyPrefix+requestID, bookingID, ttl).Err()
}
