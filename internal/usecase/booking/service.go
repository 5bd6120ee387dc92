package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/stayhub/hotel-booking-svc/internal/config"
	dom "github.com/stayhub/hotel-booking-svc/internal/domain/booking"
	"github.com/stayhub/hotel-booking-svc/internal/infrastructure/metrics"
	"github.com/stayhub/hotel-booking-svc/internal/infrastructure/tracing"
)

// EventPublisher abstracts publishing booking events to Kafka (or any other transport).
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, topic string, event *dom.Event) error
}

// CreateBookingInput carries one booking request. When AutoSelect is set
// the RoomID is ignored and the least-booked recommended room is used.
// An empty RequestID gets a generated one; retries must reuse it.
type CreateBookingInput struct {
	UserID     string
	RoomID     int64
	AutoSelect bool
	Range      dom.DateRange
	RequestID  string
}

// Service orchestrates the booking saga: candidate selection, local
// conflict check, durable PENDING write, remote confirm, and the
// compensation path when the confirm step fails.
type Service struct {
	repo          dom.Repository
	idemCache     dom.IdempotencyCache
	eventRepo     dom.EventRepository
	inventory     dom.InventoryGateway
	kafkaProducer EventPublisher
	comp          *compensator
	cfg           *config.Config
}

func NewService(
	repo dom.Repository,
	idemCache dom.IdempotencyCache,
	eventRepo dom.EventRepository,
	inventory dom.InventoryGateway,
	kafkaProducer EventPublisher,
	cfg *config.Config,
) *Service {
	return &Service{
		repo:          repo,
		idemCache:     idemCache,
		eventRepo:     eventRepo,
		inventory:     inventory,
		kafkaProducer: kafkaProducer,
		comp:          &compensator{inventory: inventory},
		cfg:           cfg,
	}
}

// CreateBooking runs the end-to-end create flow. The PENDING row is
// written before the remote confirm call so that a crash in between
// leaves a recoverable record, never an orphaned remote hold.
func (s *Service) CreateBooking(ctx context.Context, in CreateBookingInput) (*dom.Booking, error) {
	ctx, span := tracing.StartSpan(ctx, "CreateBooking")
	defer span.End()

	if !in.Range.Valid() {
		return nil, fmt.Errorf("end date must be after start date: %w", dom.ErrInvalidInput)
	}
	if in.UserID == "" {
		return nil, fmt.Errorf("user id is required: %w", dom.ErrInvalidInput)
	}

	requestID := in.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	// A replayed request resolves to its original outcome, and no remote
	// calls are issued.
	if existing, err := s.resolveIdempotent(ctx, requestID); err != nil {
		return nil, err
	} else if existing != nil {
		log.Info().
			Str("request_id", requestID).
			Str("booking_id", existing.ID).
			Msg("Replayed create request resolved to existing booking")
		return existing, nil
	}

	room, err := s.selectRoom(ctx, in)
	if err != nil {
		return nil, err
	}

	// Local fast path: reject ranges that already collide with a CONFIRMED
	// booking before paying for the remote round trip. The remote confirm
	// stays authoritative for races this check cannot see.
	conflict, err := s.repo.HasConfirmedOverlap(ctx, room.ID, in.Range)
	if err != nil {
		return nil, fmt.Errorf("conflict check failed: %w", err)
	}
	if conflict {
		return nil, fmt.Errorf("room %d: %w", room.ID, dom.ErrRoomConflict)
	}

	booking := &dom.Booking{
		ID:        uuid.New().String(),
		UserID:    in.UserID,
		RoomID:    room.ID,
		StartDate: in.Range.Start,
		EndDate:   in.Range.End,
		Status:    dom.StatusPending,
		RequestID: requestID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, dom.ErrDuplicateRequest) {
			// Lost a race with an identical request; hand back its outcome.
			return s.repo.GetBookingByRequestID(ctx, requestID)
		}
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	confirmed, confirmErr := s.inventory.ConfirmAvailability(ctx, room.ID, requestID, in.Range)
	if confirmed {
		if err := s.finishCreate(ctx, booking, dom.StatusConfirmed, ""); err != nil {
			// Someone moved the booking off PENDING underneath us; the
			// remote hold exists, so release it and fail closed.
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("Lost confirm race, compensating")
			s.comp.compensate(ctx, room.ID, requestID)
			return nil, fmt.Errorf("booking %s: %w", booking.ID, dom.ErrRoomConflict)
		}
		metrics.RecordBookingOutcome("confirmed")
		s.cacheRequestID(ctx, requestID, booking.ID)
		return booking, nil
	}

	// Negative answer, timeout and exhausted retries all land here: fail
	// closed, cancel locally, release the (possibly granted) remote hold.
	reason := "room not available"
	if confirmErr != nil {
		reason = "inventory service unavailable"
	}
	if err := s.finishCreate(ctx, booking, dom.StatusCancelled, reason); err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("Failed to cancel booking after confirm failure")
	}
	s.comp.compensate(ctx, room.ID, requestID)
	metrics.RecordBookingOutcome("cancelled")
	s.cacheRequestID(ctx, requestID, booking.ID)

	if confirmErr != nil {
		return nil, fmt.Errorf("booking %s: %w", booking.ID, dom.ErrRoomUnavailable)
	}
	return nil, fmt.Errorf("booking %s: %w", booking.ID, dom.ErrRoomConflict)
}

// CancelBooking cancels a booking on behalf of its owner or an admin.
// Cancelling a CONFIRMED booking releases the remote hold; release
// failures never block the local transition.
func (s *Service) CancelBooking(ctx context.Context, id string, actor dom.Actor) (*dom.Booking, error) {
	ctx, span := tracing.StartSpan(ctx, "CancelBooking")
	defer span.End()

	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.CanCancel(booking) {
		return nil, fmt.Errorf("booking %s: %w", id, dom.ErrForbidden)
	}
	if booking.Status == dom.StatusCancelled {
		return nil, fmt.Errorf("booking %s: %w", id, dom.ErrAlreadyCancelled)
	}

	previous := booking.Status
	if err := booking.Transition(dom.StatusCancelled); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBookingStatus(ctx, id, previous, dom.StatusCancelled); err != nil {
		if errors.Is(err, dom.ErrInvalidTransition) {
			// Lost a race with another terminal transition.
			return nil, fmt.Errorf("booking %s: %w", id, dom.ErrAlreadyCancelled)
		}
		return nil, err
	}

	if previous == dom.StatusConfirmed {
		s.comp.compensate(ctx, booking.RoomID, booking.RequestID)
	}
	metrics.RecordBookingOutcome("cancelled")

	s.emitEvent(ctx, dom.TopicBookingCancelled, booking, "cancelled by "+string(actor.Role))
	return booking, nil
}

func (s *Service) GetBooking(ctx context.Context, id string) (*dom.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *Service) ListBookings(ctx context.Context, filters *dom.ListFilters) ([]*dom.Booking, int32, error) {
	return s.repo.ListBookings(ctx, filters)
}

// resolveIdempotent maps a request ID to its booking, first through the
// cache, then through the ledger's unique index. Returns nil when the
// request has never been seen.
func (s *Service) resolveIdempotent(ctx context.Context, requestID string) (*dom.Booking, error) {
	if bookingID, ok, err := s.idemCache.Get(ctx, requestID); err != nil {
		log.Warn().Err(err).Str("request_id", requestID).Msg("Idempotency cache lookup failed")
	} else if ok {
		booking, err := s.repo.GetBooking(ctx, bookingID)
		if err == nil {
			return booking, nil
		}
		log.Warn().Err(err).Str("booking_id", bookingID).Msg("Cached booking not found in ledger")
	}

	booking, err := s.repo.GetBookingByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, dom.ErrBookingNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("idempotency lookup failed: %w", err)
	}
	return booking, nil
}

func (s *Service) cacheRequestID(ctx context.Context, requestID, bookingID string) {
	if err := s.idemCache.Set(ctx, requestID, bookingID, s.cfg.IdempotencyTTL); err != nil {
		log.Warn().Err(err).Str("request_id", requestID).Msg("Failed to cache request id")
	}
}

// selectRoom resolves the candidate room. Remote read failures have
// already been degraded to empty results by the gateway, so "nothing
// came back" is the only failure mode here.
func (s *Service) selectRoom(ctx context.Context, in CreateBookingInput) (*dom.Room, error) {
	if in.AutoSelect {
		rooms, err := s.inventory.FetchRecommended(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch recommended rooms: %w", err)
		}
		if len(rooms) == 0 {
			return nil, dom.ErrNoRoomsAvailable
		}
		return rooms[0], nil
	}

	room, err := s.inventory.FetchRoom(ctx, in.RoomID)
	if err != nil {
		return nil, fmt.Errorf("fetch room %d: %w", in.RoomID, err)
	}
	if room == nil {
		return nil, fmt.Errorf("room %d: %w", in.RoomID, dom.ErrRoomNotFound)
	}
	return room, nil
}

// finishCreate applies the terminal transition of the create flow and
// queues the lifecycle event.
func (s *Service) finishCreate(ctx context.Context, b *dom.Booking, to dom.Status, reason string) error {
	if err := b.Transition(to); err != nil {
		return err
	}
	if err := s.repo.UpdateBookingStatus(ctx, b.ID, dom.StatusPending, to); err != nil {
		return err
	}

	topic := dom.TopicBookingConfirmed
	if to == dom.StatusCancelled {
		topic = dom.TopicBookingCancelled
	}
	s.emitEvent(ctx, topic, b, reason)
	return nil
}

func (s *Service) emitEvent(ctx context.Context, topic string, b *dom.Booking, reason string) {
	event := &dom.Event{
		BookingID: b.ID,
		UserID:    b.UserID,
		RoomID:    b.RoomID,
		RequestID: b.RequestID,
		Status:    b.Status,
		Reason:    reason,
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("booking_id", b.ID).Msg("Failed to marshal event")
		return
	}
	if err := s.eventRepo.AddToOutbox(ctx, topic, b.ID, data); err != nil {
		log.Error().Err(err).Str("booking_id", b.ID).Msg("Failed to add to outbox")
	}
}

// compensator drives the rollback path: it releases the remote hold and
// guarantees that a release failure never masks the original error or
// blocks the local transition.
type compensator struct {
	inventory dom.InventoryGateway
}

func (c *compensator) compensate(ctx context.Context, roomID int64, requestID string) {
	if err := c.inventory.ReleaseRoom(ctx, roomID, requestID); err != nil {
		// Advisory only. A stuck remote hold is reconciled out of band.
		log.Error().
			Err(err).
			Int64("room_id", roomID).
			Str("request_id", requestID).
			Msg("Failed to release room during compensation")
	}
}

// StartOutboxWorker drains pending outbox messages to Kafka until the
// context is cancelled.
func (s *Service) StartOutboxWorker(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.processOutbox(ctx)
		}
	}
}

func (s *Service) processOutbox(ctx context.Context) {
	messages, err := s.eventRepo.GetPendingOutbox(ctx, 10)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get pending outbox messages")
		return
	}

	for _, msg := range messages {
		var event dom.Event
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			log.Error().Err(err).Str("id", msg.ID).Msg("Failed to unmarshal event")
			s.eventRepo.UpdateOutboxStatus(ctx, msg.ID, "failed", msg.RetryCount+1)
			continue
		}

		if err := s.kafkaProducer.PublishBookingEvent(ctx, msg.Topic, &event); err != nil {
			log.Error().Err(err).Str("id", msg.ID).Msg("Failed to publish event")
			if msg.RetryCount >= 3 {
				s.eventRepo.UpdateOutboxStatus(ctx, msg.ID, "dlq", msg.RetryCount+1)
			} else {
				s.eventRepo.UpdateOutboxStatus(ctx, msg.ID, "pending", msg.RetryCount+1)
			}
			continue
		}

		s.eventRepo.UpdateOutboxStatus(ctx, msg.ID, "sent", msg.RetryCount)
	}
}

// StartRecoveryWorker periodically sweeps PENDING bookings that outlived
// the confirm window. A stale PENDING row means the confirm outcome is
// unknown, so the sweep fails closed: cancel locally and defensively
// release whatever hold may exist remotely.
func (s *Service) StartRecoveryWorker(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.processStalePending(ctx)
		}
	}
}

func (s *Service) processStalePending(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.PendingMaxAge)
	bookings, err := s.repo.GetStalePending(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get stale pending bookings")
		return
	}

	for _, booking := range bookings {
		if err := s.repo.UpdateBookingStatus(ctx, booking.ID, dom.StatusPending, dom.StatusCancelled); err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("Failed to cancel stale pending booking")
			continue
		}
		booking.Status = dom.StatusCancelled

		s.comp.compensate(ctx, booking.RoomID, booking.RequestID)
		metrics.RecordBookingOutcome("recovered")

		s.emitEvent(ctx, dom.TopicBookingCancelled, booking, "confirm outcome unknown")
	}
}
