package profile

import (
	"errors"
	"net/http"

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
	rg.GET("/profile", h.Get)
	rg.PATCH("/profile", h.Update)
	rg.POST("/profile/photo", h.UploadAvatar)
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		writeProfileError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"profile": p})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	u, err := h.service.Update(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		writeProfileError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": u})
}

func (h *Handler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "photo file is required")
		return
	}

	photo, err := h.service.UploadAvatar(c.Request.Context(), c.GetInt64("user_id"), fileHeader)
	if err != nil {
		writeProfileError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"photo": photo})
}

func writeProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidImage):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process request")
	}
}
