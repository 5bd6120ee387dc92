package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	dom "github.com/stayhub/hotel-booking-svc/internal/domain/booking"
)

const uniqueViolation = "23505"

// Repository is the pgx-backed booking ledger.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) CreateBooking(ctx context.Context, b *dom.Booking) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bookings (id, user_id, room_id, start_date, end_date, status, request_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`, b.ID, b.UserID, b.RoomID, b.StartDate, b.EndDate, string(b.Status), b.RequestID, b.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("create booking: %w", dom.ErrDuplicateRequest)
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *Repository) GetBooking(ctx context.Context, id string) (*dom.Booking, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, room_id, start_date, end_date, status, request_id, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`, id)
	return scanBooking(row)
}

func (r *Repository) GetBookingByRequestID(ctx context.Context, requestID string) (*dom.Booking, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, room_id, start_date, end_date, status, request_id, created_at, updated_at
		FROM bookings
		WHERE request_id = $1
	`, requestID)
	return scanBooking(row)
}

func (r *Repository) ListBookings(ctx context.Context, filters *dom.ListFilters) ([]*dom.Booking, int32, error) {
	query := `
		SELECT id, user_id, room_id, start_date, end_date, status, request_id, created_at, updated_at,
		       COUNT(*) OVER() AS total
		FROM bookings
		WHERE ($1 = '' OR user_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, query, filters.UserID, string(filters.Status), limit, filters.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*dom.Booking
	var total int32
	for rows.Next() {
		var b dom.Booking
		var status string
		if err := rows.Scan(&b.ID, &b.UserID, &b.RoomID, &b.StartDate, &b.EndDate, &status, &b.RequestID, &b.CreatedAt, &b.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan booking: %w", err)
		}
		b.Status = dom.Status(status)
		bookings = append(bookings, &b)
	}
	return bookings, total, rows.Err()
}

// UpdateBookingStatus is the single write path for status changes. The
// WHERE clause on the expected previous status makes it a compare-and-set:
// when two transitions race, exactly one matches a row.
func (r *Repository) UpdateBookingStatus(ctx context.Context, id string, from, to dom.Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not in status %s: %w", id, from, dom.ErrInvalidTransition)
	}
	return nil
}

func (r *Repository) HasConfirmedOverlap(ctx context.Context, roomID int64, dr dom.DateRange) (bool, error) {
	// [s1,e1) and [s2,e2) overlap iff s1 < e2 AND s2 < e1.
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE room_id = $1
			  AND status = $2
			  AND start_date < $4
			  AND $3 < end_date
		)
	`, roomID, string(dom.StatusConfirmed), dr.Start, dr.End).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check confirmed overlap: %w", err)
	}
	return exists, nil
}

func (r *Repository) GetStalePending(ctx context.Context, cutoff time.Time) ([]*dom.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, room_id, start_date, end_date, status, request_id, created_at, updated_at
		FROM bookings
		WHERE status = $1 AND created_at < $2
	`, string(dom.StatusPending), cutoff)
	if err != nil {
		return nil, fmt.Errorf("get stale pending: %w", err)
	}
	defer rows.Close()

	var bookings []*dom.Booking
	for rows.Next() {
		var b dom.Booking
		var status string
		if err := rows.Scan(&b.ID, &b.UserID, &b.RoomID, &b.StartDate, &b.EndDate, &status, &b.RequestID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		b.Status = dom.Status(status)
		bookings = append(bookings, &b)
	}
	return bookings, rows.Err()
}

func (r *Repository) AddToOutbox(ctx context.Context, topic, key string, payload []byte) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO outbox (topic, key, payload, status, retry_count, created_at)
		VALUES ($1, $2, $3, 'pending', 0, NOW())
	`, topic, key, payload)
	if err != nil {
		return fmt.Errorf("add to outbox: %w", err)
	}
	return nil
}

func (r *Repository) GetPendingOutbox(ctx context.Context, limit int32) ([]*dom.OutboxMessage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, topic, key, payload, status, retry_count, created_at
		FROM outbox
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending outbox: %w", err)
	}
	defer rows.Close()

	var messages []*dom.OutboxMessage
	for rows.Next() {
		var m dom.OutboxMessage
		if err := rows.Scan(&m.ID, &m.Topic, &m.Key, &m.Payload, &m.Status, &m.RetryCount, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

func (r *Repository) UpdateOutboxStatus(ctx context.Context, id, status string, retryCount int32) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE outbox
		SET status = $1, retry_count = $2
		WHERE id = $3
	`, status, retryCount, id)
	if err != nil {
		return fmt.Errorf("update outbox status: %w", err)
	}
	return nil
}

func scanBooking(row pgx.Row) (*dom.Booking, error) {
	var b dom.Booking
	var status string
	err := row.Scan(&b.ID, &b.UserID, &b.RoomID, &b.StartDate, &b.EndDate, &status, &b.RequestID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dom.ErrBookingNotFound
		}
		return nil, fmt.Errorf("scan booking: %w", err)
	}
	b.Status = dom.Status(status)
	return &b, nil
}
