package catalog

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

// RegisterPublicRoutes exposes the browse endpoints.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/services", h.ListServices)
	rg.GET("/services/:id", h.GetService)
	rg.GET("/categories", h.ListCategories)
}

// RegisterProviderRoutes exposes the owner-side catalog management.
func (h *Handler) RegisterProviderRoutes(rg *gin.RouterGroup) {
	rg.POST("/services", h.CreateService)
	rg.PATCH("/services/:id", h.UpdateService)
	rg.POST("/services/:id/photos", h.AddPhoto)
	rg.DELETE("/services/:id/photos/:photoId", h.RemovePhoto)
}

func (h *Handler) ListServices(c *gin.Context) {
	categoryID, _ := strconv.ParseInt(c.Query("category_id"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.service.ListServices(c.Request.Context(), categoryID, limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load services")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"services": list})
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc, err := h.service.GetService(c.Request.Context(), id)
	if err != nil {
		writeCatalogError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

func (h *Handler) ListCategories(c *gin.Context) {
	list, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load categories")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"categories": list})
}

func (h *Handler) CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	svc, err := h.service.CreateService(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		writeCatalogError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"service": svc})
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	svc, err := h.service.UpdateService(c.Request.Context(), id, c.GetInt64("user_id"), req)
	if err != nil {
		writeCatalogError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

func (h *Handler) AddPhoto(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "photo file is required")
		return
	}
	makePrimary := c.PostForm("is_primary") == "true"

	img, err := h.service.AddPhoto(c.Request.Context(), id, c.GetInt64("user_id"), fileHeader, makePrimary)
	if err != nil {
		writeCatalogError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"photo": img})
}

func (h *Handler) RemovePhoto(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	photoID, ok := pathID(c, "photoId")
	if !ok {
		return
	}

	if err := h.service.RemovePhoto(c.Request.Context(), id, photoID, c.GetInt64("user_id")); err != nil {
		writeCatalogError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid identifier")
		return 0, false
	}
	return id, true
}

func writeCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidImage):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrPhotoLimit):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "A service can have at most 3 photos")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this service")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Service not found")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process request")
	}
}
