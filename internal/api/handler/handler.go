package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	apiauth "github.com/jon4hz/keepsake/internal/api/auth"
	"github.com/jon4hz/keepsake/internal/api/models"
	"github.com/jon4hz/keepsake/internal/auth"
	"github.com/jon4hz/keepsake/internal/config"
	"github.com/jon4hz/keepsake/internal/gallery"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgNotAuthenticated   = "Not authenticated"
	msgInvalidRequest     = "Invalid request body"
	msgInternal           = "Internal server error"
	msgAccessDenied       = "Access Denied"
	msgTryAgain           = "Something went wrong, please try again"
)

type Handler struct {
	config  *config.Config
	authn   *auth.Authenticator
	cookies *apiauth.Cookies
	mw      *apiauth.Middleware
	gallery *gallery.Gallery
}

func New(cfg *config.Config, authn *auth.Authenticator, cookies *apiauth.Cookies, mw *apiauth.Middleware, g *gallery.Gallery) *Handler {
	return &Handler{
		config:  cfg,
		authn:   authn,
		cookies: cookies,
		mw:      mw,
		gallery: g,
	}
}

// Login verifies the submitted credentials and sets the session cookie.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: msgInvalidRequest})
		return
	}

	res, err := h.authn.Login(c.Request.Context(), req, h.cookies.Token(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.cookies.Issue(c, res.Session); err != nil {
		log.Error("Failed to set session cookie", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: msgInternal})
		return
	}

	c.JSON(http.StatusOK, res.User)
}

// Logout destroys the current session. It succeeds without a session too.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.authn.Logout(c.Request.Context(), h.cookies.Token(c)); err != nil {
		h.writeError(c, err)
		return
	}
	h.cookies.Clear(c)
	c.Status(http.StatusOK)
}

// User returns the signed in user.
func (h *Handler) User(c *gin.Context) {
	id, err := h.mw.Resolve(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !id.Authenticated() {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: msgNotAuthenticated})
		return
	}
	c.JSON(http.StatusOK, id.User)
}

// Health reports that the server is up and how much room the thumbnail cache has.
func (h *Handler) Health(c *gin.Context) {
	res := models.HealthResponse{Status: "ok"}
	usage, err := h.gallery.CacheDiskUsage(c.Request.Context())
	if err != nil {
		log.Warn("Failed to get thumbnail cache disk usage", "error", err)
	} else {
		res.CacheFreeBytes = usage.Free
	}
	c.JSON(http.StatusOK, res)
}

// writeError maps authenticator errors to a status and a short message.
// Internal details are logged, never sent.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrValidation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: msgInvalidCredentials})
	case errors.Is(err, auth.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: msgNotAuthenticated})
	default:
		log.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: msgInternal})
	}
}
