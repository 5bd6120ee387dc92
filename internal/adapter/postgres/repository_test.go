package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	dom "github.com/stayhub/hotel-booking-svc/internal/domain/booking"
)

// Unit tests for repository inputs (without a database). Integration
// coverage would require testcontainers or pgmock.

func TestRepository_BookingRow_Structure(t *testing.T) {
	t.Run("pending booking carries its request id", func(t *testing.T) {
		b := &dom.Booking{
			ID:        "booking-1",
			UserID:    "user-1",
			RoomID:    7,
			StartDate: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC),
			Status:    dom.StatusPending,
			RequestID: "req-1",
			CreatedAt: time.Now().UTC(),
		}

		assert.NotEmpty(t, b.ID)
		assert.NotEmpty(t, b.RequestID)
		assert.True(t, b.EndDate.After(b.StartDate))
		assert.Equal(t, dom.StatusPending, b.Status)
	})
}

func TestRepository_OverlapPredicate(t *testing.T) {
	// The SQL WHERE clause (start_date < $end AND $start < end_date) must
	// agree with the domain predicate for half-open ranges.
	day := func(s string) time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return d
	}
	sqlOverlap := func(rowStart, rowEnd, qStart, qEnd time.Time) bool {
		return rowStart.Before(qEnd) && qStart.Before(rowEnd)
	}

	testCases := []struct {
		name                 string
		rowStart, rowEnd     string
		queryStart, queryEnd string
	}{
		{"identical", "2025-12-01", "2025-12-03", "2025-12-01", "2025-12-03"},
		{"partial", "2025-12-01", "2025-12-03", "2025-12-02", "2025-12-05"},
		{"back to back", "2025-12-01", "2025-12-03", "2025-12-03", "2025-12-05"},
		{"disjoint", "2025-12-01", "2025-12-03", "2025-12-10", "2025-12-12"},
		{"contained", "2025-12-01", "2025-12-10", "2025-12-04", "2025-12-05"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			row := dom.DateRange{Start: day(tc.rowStart), End: day(tc.rowEnd)}
			query := dom.DateRange{Start: day(tc.queryStart), End: day(tc.queryEnd)}
			assert.Equal(t,
				row.Overlaps(query),
				sqlOverlap(row.Start, row.End, query.Start, query.End),
			)
		})
	}
}

func TestRepository_ListFilters_Defaults(t *testing.T) {
	filters := &dom.ListFilters{}
	assert.Empty(t, filters.UserID)
	assert.Empty(t, filters.Status)
	assert.Zero(t, filters.Limit)
}
