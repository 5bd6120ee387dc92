package booking

import (
	"context"
)

// EventHeaders carry cross-cutting metadata on every published event.
type EventHeaders struct {
	TraceID   string `json:"trace_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Source    string `json:"source"`
}

// Event is the lifecycle notification emitted when a booking reaches a
// terminal state. Events go through the transactional outbox and are
// drained to Kafka by a background worker.
type Event struct {
	BookingID string       `json:"booking_id"`
	UserID    string       `json:"user_id"`
	RoomID    int64        `json:"room_id"`
	RequestID string       `json:"request_id"`
	Status    Status       `json:"status"`
	Reason    string       `json:"reason,omitempty"`
	Headers   EventHeaders `json:"headers"`
}

// Event topics.
const (
	TopicBookingConfirmed = "booking.confirmed"
	TopicBookingCancelled = "booking.cancelled"
)

// EventRepository defines interface for event operations (Outbox pattern)
type EventRepository interface {
	AddToOutbox(ctx context.Context, topic, key string, payload []byte) error
	GetPendingOutbox(ctx context.Context, limit int32) ([]*OutboxMessage, error)
	UpdateOutboxStatus(ctx context.Context, id, status string, retryCount int32) error
}
