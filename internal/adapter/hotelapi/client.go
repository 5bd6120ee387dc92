package hotelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"

	dom "github.com/stayhub/hotel-booking-svc/internal/domain/booking"
	"github.com/stayhub/hotel-booking-svc/internal/infrastructure/metrics"
)

const dateLayout = "2006-01-02"

// errRejected marks a definitive 4xx answer from the inventory service.
// Retrying a request the server has already rejected cannot change the
// outcome, so it short-circuits the retry loop.
var errRejected = errors.New("request rejected by inventory service")

// Config holds the gateway's remote call policy. The base URL and budgets
// are injected here rather than read from globals.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Client talks to the hotel inventory service over HTTP. It implements
// booking.InventoryGateway: every call is bounded by Config.Timeout per
// attempt, retried with exponential backoff up to Config.MaxAttempts, and
// guarded by a circuit breaker shared across operations.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(cfg Config) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 8 * time.Second
	}

	settings := gobreaker.Settings{
		Name: "hotel-inventory",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A 4xx is a definitive answer, not a sign the remote is unhealthy.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errRejected)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{},
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

type roomDTO struct {
	ID          int64 `json:"id"`
	HotelID     int64 `json:"hotelId"`
	Available   bool  `json:"available"`
	TimesBooked int32 `json:"timesBooked"`
}

type confirmRequest struct {
	RequestID string `json:"requestId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// FetchRoom returns the room snapshot, or nil when the room does not
// exist or the service could not answer within budget. Remote failures on
// this read path are absorbed, not propagated.
func (c *Client) FetchRoom(ctx context.Context, roomID int64) (*dom.Room, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/rooms/%d", roomID), nil)
	if err != nil {
		metrics.RecordRemoteCall("fetch_room", "error")
		log.Error().Err(err).Int64("room_id", roomID).Msg("Failed to fetch room")
		return nil, nil
	}

	var dto roomDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		metrics.RecordRemoteCall("fetch_room", "error")
		log.Error().Err(err).Int64("room_id", roomID).Msg("Failed to decode room")
		return nil, nil
	}

	metrics.RecordRemoteCall("fetch_room", "ok")
	return toRoom(dto), nil
}

// FetchRecommended returns available rooms ranked ascending by
// TimesBooked with ID as the deterministic tie-break. Degrades to an
// empty slice when the service is unavailable.
func (c *Client) FetchRecommended(ctx context.Context) ([]*dom.Room, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/rooms/recommend", nil)
	if err != nil {
		metrics.RecordRemoteCall("fetch_recommended", "error")
		log.Error().Err(err).Msg("Failed to fetch recommended rooms")
		return nil, nil
	}

	var dtos []roomDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		metrics.RecordRemoteCall("fetch_recommended", "error")
		log.Error().Err(err).Msg("Failed to decode recommended rooms")
		return nil, nil
	}

	rooms := make([]*dom.Room, 0, len(dtos))
	for _, dto := range dtos {
		rooms = append(rooms, toRoom(dto))
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].TimesBooked != rooms[j].TimesBooked {
			return rooms[i].TimesBooked < rooms[j].TimesBooked
		}
		return rooms[i].ID < rooms[j].ID
	})

	metrics.RecordRemoteCall("fetch_recommended", "ok")
	return rooms, nil
}

// ConfirmAvailability asks the inventory service to convert the booking
// intent into a hard hold. The remote side is idempotent on requestID.
// Fail closed: an exhausted budget or timeout is (false,
// ErrRemoteUnavailable), never an assumed success; a definitive remote
// rejection is (false, nil).
func (c *Client) ConfirmAvailability(ctx context.Context, roomID int64, requestID string, r dom.DateRange) (bool, error) {
	payload, err := json.Marshal(confirmRequest{
		RequestID: requestID,
		StartDate: r.Start.Format(dateLayout),
		EndDate:   r.End.Format(dateLayout),
	})
	if err != nil {
		return false, fmt.Errorf("failed to marshal confirm request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/rooms/%d/confirm-availability", roomID), payload)
	if err != nil {
		if errors.Is(err, errRejected) {
			metrics.RecordRemoteCall("confirm_availability", "rejected")
			log.Warn().Int64("room_id", roomID).Str("request_id", requestID).Msg("Confirm request rejected")
			return false, nil
		}
		metrics.RecordRemoteCall("confirm_availability", "error")
		log.Error().Err(err).Int64("room_id", roomID).Str("request_id", requestID).Msg("Failed to confirm availability")
		return false, fmt.Errorf("confirm availability: %w", dom.ErrRemoteUnavailable)
	}

	var confirmed bool
	if err := json.Unmarshal(body, &confirmed); err != nil {
		metrics.RecordRemoteCall("confirm_availability", "error")
		log.Error().Err(err).Int64("room_id", roomID).Msg("Failed to decode confirm response")
		return false, fmt.Errorf("confirm availability: %w", dom.ErrRemoteUnavailable)
	}

	metrics.RecordRemoteCall("confirm_availability", "ok")
	return confirmed, nil
}

// ReleaseRoom drops the hold held under requestID. Best effort: the
// returned error is advisory and callers only log it.
func (c *Client) ReleaseRoom(ctx context.Context, roomID int64, requestID string) error {
	path := fmt.Sprintf("/api/rooms/%d/release?requestId=%s", roomID, url.QueryEscape(requestID))
	if _, err := c.do(ctx, http.MethodPost, path, nil); err != nil {
		metrics.RecordRemoteCall("release_room", "error")
		return fmt.Errorf("release room %d: %w", roomID, err)
	}
	metrics.RecordRemoteCall("release_room", "ok")
	return nil
}

// do performs one HTTP call with per-attempt timeout, exponential backoff
// between attempts, and the shared circuit breaker. A 4xx response stops
// retrying immediately.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	backoff := c.cfg.InitialBackoff

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		body, err := c.attempt(ctx, method, path, payload)
		if err == nil {
			return body, nil
		}
		if errors.Is(err, errRejected) {
			return nil, err
		}
		lastErr = err

		if errors.Is(err, gobreaker.ErrOpenState) {
			// The breaker is open; further attempts fail instantly.
			break
		}
		if attempt == c.cfg.MaxAttempts {
			break
		}

		log.Warn().
			Err(err).
			Str("method", method).
			Str("path", path).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("Inventory call failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.cfg.MaxBackoff {
			backoff = c.cfg.MaxBackoff
		}
	}

	return nil, fmt.Errorf("inventory call %s %s exhausted retries: %w", method, path, lastErr)
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.breaker.Execute(func() ([]byte, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return body, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, fmt.Errorf("%w: status %d", errRejected, resp.StatusCode)
		default:
			return nil, fmt.Errorf("inventory service returned status %d", resp.StatusCode)
		}
	})
}

func toRoom(dto roomDTO) *dom.Room {
	return &dom.Room{
		ID:          dto.ID,
		HotelID:     dto.HotelID,
		Available:   dto.Available,
		TimesBooked: dto.TimesBooked,
	}
}
