package kafka

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "github.com/stayhub/hotel-booking-svc/internal/domain/booking"
)

func TestProducer_EventTopics(t *testing.T) {
	eventTypes := []struct {
		name  string
		topic string
	}{
		{name: "booking confirmed", topic: dom.TopicBookingConfirmed},
		{name: "booking cancelled", topic: dom.TopicBookingCancelled},
	}

	for _, et := range eventTypes {
		t.Run(et.name, func(t *testing.T) {
			assert.NotEmpty(t, et.topic)
			assert.Contains(t, et.topic, "booking.")
		})
	}
}

func TestEvent_PayloadShape(t *testing.T) {
	event := &dom.Event{
		BookingID: "550e8400-e29b-41d4-a716-446655440000",
		UserID:    "user-1",
		RoomID:    42,
		RequestID: "req-1",
		Status:    dom.StatusConfirmed,
		Headers: dom.EventHeaders{
			TraceID:   "trace-1",
			Timestamp: 1735689600,
			Source:    "booking-svc",
		},
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", decoded["booking_id"])
	assert.Equal(t, "user-1", decoded["user_id"])
	assert.Equal(t, float64(42), decoded["room_id"])
	assert.Equal(t, "CONFIRMED", decoded["status"])
	assert.NotContains(t, decoded, "reason")

	headers, ok := decoded["headers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "booking-svc", headers["source"])
	assert.Equal(t, "trace-1", headers["trace_id"])
}

func TestEvent_ReasonIncludedWhenSet(t *testing.T) {
	event := &dom.Event{
		BookingID: "b-1",
		Status:    dom.StatusCancelled,
		Reason:    "confirm outcome unknown",
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "confirm outcome unknown", decoded["reason"])
}

func TestProducer_KeyFallback(t *testing.T) {
	t.Run("booking ID used as key", func(t *testing.T) {
		key := "booking-1"
		assert.NotEmpty(t, key)
	})

	t.Run("empty booking ID gets generated key", func(t *testing.T) {
		key := ""
		if key == "" {
			key = uuid.New().String()
		}
		_, err := uuid.Parse(key)
		assert.NoError(t, err)
	})
}
