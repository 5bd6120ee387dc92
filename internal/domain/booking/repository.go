package booking

import (
	"context"
	"time"
)

// Repository defines the booking ledger operations.
type Repository interface {
	CreateBooking(ctx context.Context, booking *Booking) error
	GetBooking(ctx context.Context, id string) (*Booking, error)
	// GetBookingByRequestID resolves an idempotency key to its booking;
	// returns ErrBookingNotFound when no booking carries the key.
	GetBookingByRequestID(ctx context.Context, requestID string) (*Booking, error)
	ListBookings(ctx context.Context, filters *ListFilters) ([]*Booking, int32, error)
	// UpdateBookingStatus applies the transition from -> to as a single
	// compare-and-set; it returns ErrInvalidTransition when the booking is
	// no longer in the expected state, so racing transitions cannot both win.
	UpdateBookingStatus(ctx context.Context, id string, from, to Status) error
	// HasConfirmedOverlap reports whether any CONFIRMED booking on the room
	// overlaps the half-open range.
	HasConfirmedOverlap(ctx context.Context, roomID int64, r DateRange) (bool, error)
	// GetStalePending returns PENDING bookings created before the cutoff,
	// i.e. rows whose remote confirm outcome is unknown.
	GetStalePending(ctx context.Context, cutoff time.Time) ([]*Booking, error)

	AddToOutbox(ctx context.Context, topic, key string, payload []byte) error
	GetPendingOutbox(ctx context.Context, limit int32) ([]*OutboxMessage, error)
	UpdateOutboxStatus(ctx context.Context, id, status string, retryCount int32) error
}

// OutboxMessage represents a message in the outbox table
type OutboxMessage struct {
	ID         string
	Topic      string
	Key        string
	Payload    []byte
	Status     string
	RetryCount int32
	CreatedAt  time.Time
}
