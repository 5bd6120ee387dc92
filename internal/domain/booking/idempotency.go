package booking

import (
	"context"
	"time"
)

// IdempotencyCache maps request IDs to booking IDs so retried create
// requests resolve without hitting the ledger. It is an accelerator in
// front of GetBookingByRequestID, not the source of truth: a cache miss
// always falls through to the repository lookup.
type IdempotencyCache interface {
	Get(ctx context.Context, requestID string) (bookingID string, ok bool, err error)
	Set(ctx context.Context, requestID, bookingID string, ttl time.Duration) error
}
