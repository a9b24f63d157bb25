package booking

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"servicehub/internal/domain"
	"servicehub/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings", h.ListBookings)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.POST("/bookings/:id/accept", h.Accept)
	rg.POST("/bookings/:id/decline", h.Decline)
	rg.POST("/bookings/:id/complete", h.Complete)
	rg.POST("/bookings/:id/cancel", h.Cancel)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.RequestBooking(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) ListBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.service.ListMyBookings(c.Request.Context(), c.GetInt64("user_id"), c.GetString("role"), limit, offset)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), id, c.GetInt64("user_id"), c.GetString("role"))
	if err != nil {
		writeBookingError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Accept(c *gin.Context) {
	h.applyTransition(c, h.service.Accept)
}

func (h *Handler) Decline(c *gin.Context) {
	h.applyTransition(c, h.service.Decline)
}

func (h *Handler) Complete(c *gin.Context) {
	h.applyTransition(c, h.service.Complete)
}

func (h *Handler) Cancel(c *gin.Context) {
	h.applyTransition(c, h.service.Cancel)
}

func (h *Handler) applyTransition(c *gin.Context, fn func(ctx context.Context, bookingID, actorID int64, actorRole string) (*domain.Booking, error)) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := fn(c.Request.Context(), id, c.GetInt64("user_id"), c.GetString("role"))
	if err != nil {
		writeBookingError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return 0, false
	}
	return id, true
}

func writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking request")
	case errors.Is(err, ErrSelfBooking):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "You cannot book your own service")
	case errors.Is(err, ErrServiceInactive):
		response.Error(c, http.StatusConflict, "SERVICE_INACTIVE", "Service is not available for booking")
	case errors.Is(err, ErrSlotTaken):
		response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", "Provider is not available for the selected time")
	case errors.Is(err, ErrInvalidStateTransition):
		response.Error(c, http.StatusConflict, "INVALID_STATE_TRANSITION", "Booking status does not allow this action")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not allowed to perform this action")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process booking")
	}
}
