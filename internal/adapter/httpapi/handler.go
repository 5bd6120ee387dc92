package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	dom "github.com/stayhub/hotel-booking-svc/internal/domain/booking"
	"github.com/stayhub/hotel-booking-svc/internal/usecase/booking"
)

const dateLayout = "2006-01-02"

// Handler exposes the booking service over HTTP. It is a thin wrapper:
// all decisions live in the use case, this layer only decodes requests
// and maps error kinds to status codes. The caller identity arrives in
// headers; authentication itself happens upstream.
type Handler struct {
	svc *booking.Service
}

func NewHandler(svc *booking.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.POST("/bookings", h.createBooking)
		api.GET("/bookings", h.listBookings)
		api.GET("/bookings/:id", h.getBooking)
		api.DELETE("/bookings/:id", h.cancelBooking)
	}
}

type createBookingRequest struct {
	RoomID     int64  `json:"roomId"`
	AutoSelect bool   `json:"autoSelect"`
	StartDate  string `json:"startDate" binding:"required"`
	EndDate    string `json:"endDate" binding:"required"`
	RequestID  string `json:"requestId"`
}

type bookingResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	RoomID    int64  `json:"roomId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Status    string `json:"status"`
	RequestID string `json:"requestId"`
	CreatedAt int64  `json:"createdAt"`
}

func (h *Handler) createBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startDate"})
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endDate"})
		return
	}

	b, err := h.svc.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		UserID:     actor.UserID,
		RoomID:     req.RoomID,
		AutoSelect: req.AutoSelect,
		Range:      dom.DateRange{Start: start, End: end},
		RequestID:  req.RequestID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(b))
}

func (h *Handler) getBooking(c *gin.Context) {
	b, err := h.svc.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(b))
}

func (h *Handler) listBookings(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	filters := &dom.ListFilters{
		Limit:  queryInt32(c, "limit", 50),
		Offset: queryInt32(c, "offset", 0),
	}
	// Non-admins only see their own bookings.
	if actor.Role != dom.RoleAdmin {
		filters.UserID = actor.UserID
	}

	bookings, total, err := h.svc.ListBookings(c.Request.Context(), filters)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, toResponse(b))
	}
	c.JSON(http.StatusOK, gin.H{"bookings": items, "total": total})
}

func (h *Handler) cancelBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	b, err := h.svc.CancelBooking(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(b))
}

func actorFrom(c *gin.Context) (dom.Actor, bool) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID header"})
		return dom.Actor{}, false
	}
	role := dom.Role(c.GetHeader("X-User-Role"))
	if role != dom.RoleAdmin {
		role = dom.RoleUser
	}
	return dom.Actor{UserID: userID, Role: role}, true
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dom.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, dom.ErrRoomNotFound),
		errors.Is(err, dom.ErrBookingNotFound),
		errors.Is(err, dom.ErrNoRoomsAvailable):
		status = http.StatusNotFound
	case errors.Is(err, dom.ErrRoomConflict),
		errors.Is(err, dom.ErrAlreadyCancelled):
		status = http.StatusConflict
	case errors.Is(err, dom.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, dom.ErrRoomUnavailable),
		errors.Is(err, dom.ErrRemoteUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func toResponse(b *dom.Booking) bookingResponse {
	return bookingResponse{
		ID:        b.ID,
		UserID:    b.UserID,
		RoomID:    b.RoomID,
		StartDate: b.StartDate.Format(dateLayout),
		EndDate:   b.EndDate.Format(dateLayout),
		Status:    string(b.Status),
		RequestID: b.RequestID,
		CreatedAt: b.CreatedAt.Unix(),
	}
}

func queryInt32(c *gin.Context, name string, def int32) int32 {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < 0 {
		return def
	}
	return int32(v)
}
