package booking

import (
	"context"
)

// Room is a read-only snapshot of a room as reported by the inventory
// service. The booking core never mutates rooms directly; holds are
// acquired and released through the InventoryGateway.
type Room struct {
	ID          int64
	HotelID     int64
	Available   bool
	TimesBooked int32
}

// InventoryGateway abstracts the remote room-inventory service.
//
// Every call is time-bounded and retried with backoff by the
// implementation. Degradation on exhaustion is per operation: the fetch
// calls return no result, ConfirmAvailability fails closed with
// ErrRemoteUnavailable, and ReleaseRoom is advisory.
type InventoryGateway interface {
	// FetchRoom returns a room snapshot, or nil when the room does not
	// exist or the inventory service could not answer in budget.
	FetchRoom(ctx context.Context, roomID int64) (*Room, error)
	// FetchRecommended returns rooms ranked ascending by TimesBooked,
	// ties broken by ID. An empty slice is a valid answer.
	FetchRecommended(ctx context.Context) ([]*Room, error)
	// ConfirmAvailability converts a booking intent into a hard hold.
	// The remote side is idempotent on requestID. A definitive "no" is
	// (false, nil); an exhausted retry budget or timeout is
	// (false, ErrRemoteUnavailable) - never an assumed "yes".
	ConfirmAvailability(ctx context.Context, roomID int64, requestID string, r DateRange) (bool, error)
	// ReleaseRoom drops a previously granted hold. Best effort: callers
	// log failures and move on.
	ReleaseRoom(ctx context.Context, roomID int64, requestID string) error
}
