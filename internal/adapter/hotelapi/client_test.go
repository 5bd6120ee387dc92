package hotelapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "github.com/stayhub/hotel-booking-svc/internal/domain/booking"
)

func testClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:        baseURL,
		Timeout:        time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     4 * time.Millisecond,
	})
}

func testRange() dom.DateRange {
	start, _ := time.Parse("2006-01-02", "2025-12-01")
	end, _ := time.Parse("2006-01-02", "2025-12-03")
	return dom.DateRange{Start: start, End: end}
}

func TestClient_FetchRoom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rooms/7", r.URL.Path)
		w.Write([]byte(`{"id":7,"hotelId":2,"available":true,"timesBooked":3}`))
	}))
	defer srv.Close()

	room, err := testClient(srv.URL).FetchRoom(context.Background(), 7)

	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, int64(7), room.ID)
	assert.Equal(t, int64(2), room.HotelID)
	assert.True(t, room.Available)
	assert.Equal(t, int32(3), room.TimesBooked)
}

func TestClient_FetchRoom_NotFoundShortCircuits(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	room, err := testClient(srv.URL).FetchRoom(context.Background(), 42)

	require.NoError(t, err)
	assert.Nil(t, room)
	// A 4xx is definitive; no retry budget is spent on it.
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClient_FetchRoom_DegradesOnServerErrors(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	room, err := testClient(srv.URL).FetchRoom(context.Background(), 7)

	// Read-path failures are absorbed, not propagated.
	require.NoError(t, err)
	assert.Nil(t, room)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestClient_FetchRoom_RetriesThenSucceeds(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"id":7,"available":true}`))
	}))
	defer srv.Close()

	room, err := testClient(srv.URL).FetchRoom(context.Background(), 7)

	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestClient_FetchRecommended_RanksByLoadThenID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rooms/recommend", r.URL.Path)
		w.Write([]byte(`[
			{"id":9,"available":true,"timesBooked":2},
			{"id":7,"available":true,"timesBooked":0},
			{"id":3,"available":true,"timesBooked":2}
		]`))
	}))
	defer srv.Close()

	rooms, err := testClient(srv.URL).FetchRecommended(context.Background())

	require.NoError(t, err)
	require.Len(t, rooms, 3)
	assert.Equal(t, int64(7), rooms[0].ID)
	assert.Equal(t, int64(3), rooms[1].ID)
	assert.Equal(t, int64(9), rooms[2].ID)
}

func TestClient_FetchRecommended_DegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	rooms, err := testClient(srv.URL).FetchRecommended(context.Background())

	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestClient_ConfirmAvailability(t *testing.T) {
	t.Run("remote grants the hold", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/rooms/1/confirm-availability", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			w.Write([]byte(`true`))
		}))
		defer srv.Close()

		ok, err := testClient(srv.URL).ConfirmAvailability(context.Background(), 1, "req-1", testRange())

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("remote denies the hold", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`false`))
		}))
		defer srv.Close()

		ok, err := testClient(srv.URL).ConfirmAvailability(context.Background(), 1, "req-1", testRange())

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("exhausted retries fail closed", func(t *testing.T) {
		var attempts int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		ok, err := testClient(srv.URL).ConfirmAvailability(context.Background(), 1, "req-1", testRange())

		require.Error(t, err)
		assert.ErrorIs(t, err, dom.ErrRemoteUnavailable)
		assert.False(t, ok)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("rejected request is a definitive no", func(t *testing.T) {
		var attempts int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		ok, err := testClient(srv.URL).ConfirmAvailability(context.Background(), 1, "req-1", testRange())

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})
}

func TestClient_ReleaseRoom(t *testing.T) {
	t.Run("passes request id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/rooms/5/release", r.URL.Path)
			assert.Equal(t, "req-1", r.URL.Query().Get("requestId"))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		err := testClient(srv.URL).ReleaseRoom(context.Background(), 5, "req-1")
		require.NoError(t, err)
	})

	t.Run("reports failure after retries", func(t *testing.T) {
		var attempts int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		err := testClient(srv.URL).ReleaseRoom(context.Background(), 5, "req-1")

		require.Error(t, err)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})
}
