package booking

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// transitions is the full set of legal status moves. CONFIRMED and
// CANCELLED are terminal except for the explicit CONFIRMED -> CANCELLED
// cancellation path; nothing ever returns to PENDING.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
	StatusCancelled: {},
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transitions are expected from s
// other than the explicit cancel of a confirmed booking.
func (s Status) Terminal() bool {
	return s == StatusCancelled
}

// CanTransition reports whether the move s -> to is in the transition table.
func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates and applies a status change on the booking.
// An illegal move returns ErrInvalidTransition and leaves the booking
// untouched; callers treat that as a programming defect, not a user error.
func (b *Booking) Transition(to Status) error {
	if !b.Status.CanTransition(to) {
		return ErrInvalidTransition
	}
	b.Status = to
	return nil
}
