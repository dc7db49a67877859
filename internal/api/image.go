package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipehub/backend/internal/apperror"
	"github.com/pageza/recipehub/backend/internal/blob"
	"github.com/pageza/recipehub/backend/internal/respond"
)

// ImageHandler streams stored blobs back to clients.
type ImageHandler struct {
	blobs blob.Store
}

func NewImageHandler(blobs blob.Store) *ImageHandler {
	return &ImageHandler{blobs: blobs}
}

func (h *ImageHandler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/api/images/:id", h.Get)
}

func (h *ImageHandler) Get(c *gin.Context) {
	id := c.Param("id")
	obj, err := h.blobs.Get(c.Request.Context(), id)
	if errors.Is(err, blob.ErrNotFound) {
		respond.Error(c, apperror.NotFound("Image not found").WithDetails("no image with id "+id))
		return
	}
	if err != nil {
		respond.Error(c, apperror.Internal(err).WithDetails("failed to load image"))
		return
	}
	defer obj.Body.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, nil)
}
