package booking

import (
	"time"
)

// Booking represents a single reservation intent and its outcome.
// ID, UserID, RoomID, the date range and RequestID are set at creation
// and never change; only Status moves, and only through Transition.
type Booking struct {
	ID        string
	UserID    string
	RoomID    int64
	StartDate time.Time
	EndDate   time.Time
	Status    Status
	RequestID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DateRange is a half-open interval [Start, End). End must be at least
// one day after Start.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether End is strictly after Start.
func (r DateRange) Valid() bool {
	return r.End.After(r.Start)
}

// Overlaps reports whether two half-open ranges intersect:
// [s1,e1) and [s2,e2) overlap iff s1 < e2 && s2 < e1.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Range returns the booking's date range.
func (b *Booking) Range() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}

// Role of an actor performing an operation.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Actor identifies the principal behind a request. Authentication itself
// happens upstream; the core only checks ownership and role.
type Actor struct {
	UserID string
	Role   Role
}

// CanCancel reports whether the actor may cancel the given booking.
func (a Actor) CanCancel(b *Booking) bool {
	return a.Role == RoleAdmin || a.UserID == b.UserID
}

// ListFilters narrows booking listings.
type ListFilters struct {
	UserID string
	Status Status
	Limit  int32
	Offset int32
}
