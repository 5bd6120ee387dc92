package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransition(t *testing.T) {
	testCases := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{name: "pending to confirmed", from: StatusPending, to: StatusConfirmed, allowed: true},
		{name: "pending to cancelled", from: StatusPending, to: StatusCancelled, allowed: true},
		{name: "confirmed to cancelled", from: StatusConfirmed, to: StatusCancelled, allowed: true},
		{name: "confirmed to pending", from: StatusConfirmed, to: StatusPending, allowed: false},
		{name: "confirmed to confirmed", from: StatusConfirmed, to: StatusConfirmed, allowed: false},
		{name: "cancelled to pending", from: StatusCancelled, to: StatusPending, allowed: false},
		{name: "cancelled to confirmed", from: StatusCancelled, to: StatusConfirmed, allowed: false},
		{name: "cancelled to cancelled", from: StatusCancelled, to: StatusCancelled, allowed: false},
		{name: "pending to pending", from: StatusPending, to: StatusPending, allowed: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to))
		})
	}
}

func TestBooking_Transition(t *testing.T) {
	t.Run("legal move mutates status", func(t *testing.T) {
		b := &Booking{Status: StatusPending}
		require.NoError(t, b.Transition(StatusConfirmed))
		assert.Equal(t, StatusConfirmed, b.Status)
	})

	t.Run("illegal move leaves booking untouched", func(t *testing.T) {
		b := &Booking{Status: StatusCancelled}
		err := b.Transition(StatusConfirmed)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, StatusCancelled, b.Status)
	})
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusConfirmed.Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, Status("held").Valid())
	assert.False(t, Status("").Valid())
}
