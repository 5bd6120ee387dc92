package booking

import "errors"

// Error kinds surfaced by the booking core. Callers branch with errors.Is;
// transport adapters map them onto their own status codes.
var (
	// ErrInvalidInput means the request itself is malformed, e.g. the end
	// date is not strictly after the start date.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRoomNotFound means the requested room does not exist or the
	// inventory service could not produce it.
	ErrRoomNotFound = errors.New("room not found")

	// ErrNoRoomsAvailable means auto-selection found no candidate rooms.
	ErrNoRoomsAvailable = errors.New("no available rooms")

	// ErrBookingNotFound means no booking exists under the given id.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrRoomConflict means the room is already booked for an overlapping
	// range, either in the local ledger or per the inventory service.
	ErrRoomConflict = errors.New("room is already booked")

	// ErrForbidden means the actor is neither the booking's owner nor an admin.
	ErrForbidden = errors.New("access denied")

	// ErrAlreadyCancelled means the booking is terminal and cannot change.
	ErrAlreadyCancelled = errors.New("booking already cancelled")

	// ErrRemoteUnavailable means the inventory service exhausted its retry
	// budget or timed out. The gateway reports it; the orchestrator never
	// leaks it on read paths.
	ErrRemoteUnavailable = errors.New("inventory service unavailable")

	// ErrRoomUnavailable means the remote confirm step could not grant a
	// hold because the inventory service was unreachable; the booking was
	// cancelled and compensated.
	ErrRoomUnavailable = errors.New("room not available")

	// ErrInvalidTransition means a status change outside the transition
	// table was attempted. This is an internal invariant violation.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicateRequest means another booking already holds the request
	// ID. The caller resolves it to the existing booking instead of
	// creating a new one.
	ErrDuplicateRequest = errors.New("duplicate request id")
)
