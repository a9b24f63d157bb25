package chat

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"servicehub/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings/:id/messages", h.ListMessages)
	rg.POST("/bookings/:id/messages", h.SendMessage)
	rg.POST("/bookings/:id/messages/read", h.MarkRead)
	rg.GET("/messages/unread-count", h.UnreadCount)
}

func (h *Handler) SendMessage(c *gin.Context) {
	bookingID, ok := pathID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	m, err := h.service.SendMessage(c.Request.Context(), bookingID, c.GetInt64("user_id"), req.Content)
	if err != nil {
		writeChatError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"message": m})
}

func (h *Handler) ListMessages(c *gin.Context) {
	bookingID, ok := pathID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.service.ListMessages(c.Request.Context(), bookingID, c.GetInt64("user_id"), limit, offset)
	if err != nil {
		writeChatError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"messages": list})
}

func (h *Handler) MarkRead(c *gin.Context) {
	bookingID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.MarkConversationRead(c.Request.Context(), bookingID, c.GetInt64("user_id")); err != nil {
		writeChatError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"read": true})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := h.service.UnreadCount(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to count messages")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unread": n})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return 0, false
	}
	return id, true
}

func writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid message")
	case errors.Is(err, ErrChatNotUnlocked):
		response.Error(c, http.StatusForbidden, "CHAT_NOT_UNLOCKED", "Chat opens once the booking is confirmed")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not a party of this booking")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process message")
	}
}
