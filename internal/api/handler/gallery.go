package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/keepsake/internal/auth"
	"github.com/jon4hz/keepsake/internal/gallery"
)

const mediaCacheControl = "private, max-age=86400"

// GalleryMedia serves an original gallery file.
func (h *Handler) GalleryMedia(c *gin.Context, _ *auth.User) {
	path, err := h.gallery.MediaPath(c.Param("name"))
	if err != nil {
		h.writeGalleryError(c, err)
		return
	}
	c.Header("Cache-Control", mediaCacheControl)
	c.File(path)
}

// GalleryThumbnail serves a scaled copy of a gallery image.
func (h *Handler) GalleryThumbnail(c *gin.Context, _ *auth.User) {
	path, err := h.gallery.ThumbnailPath(c.Param("name"))
	if err != nil {
		h.writeGalleryError(c, err)
		return
	}
	c.Header("Cache-Control", mediaCacheControl)
	c.File(path)
}

func (h *Handler) writeGalleryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gallery.ErrNotFound), errors.Is(err, gallery.ErrInvalidName):
		c.Status(http.StatusNotFound)
	default:
		log.Error("Failed to serve gallery file", "name", c.Param("name"), "error", err)
		c.Status(http.StatusInternalServerError)
	}
}
