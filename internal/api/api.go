package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apiauth "github.com/jon4hz/keepsake/internal/api/auth"
	"github.com/jon4hz/keepsake/internal/api/handler"
	"github.com/jon4hz/keepsake/internal/auth"
	"github.com/jon4hz/keepsake/internal/config"
	"github.com/jon4hz/keepsake/internal/gallery"
	"github.com/jon4hz/keepsake/internal/guard"
	"github.com/jon4hz/keepsake/internal/static"
	"golang.org/x/sync/errgroup"
)

// LoginPath is the only page reachable without a session.
const LoginPath = "/login"

// Server timeouts.
const (
	ReadHeaderTimeout = 10 * time.Second
	ReadTimeout       = 30 * time.Second
	WriteTimeout      = 5 * time.Minute
	ShutdownTimeout   = 5 * time.Second
)

const requestIDHeader = "X-Request-ID"

type Server struct {
	cfg       *config.Config
	ginEngine *gin.Engine
	handler   *handler.Handler
	mw        *apiauth.Middleware
}

// New creates the HTTP server with every route registered.
func New(cfg *config.Config, authn *auth.Authenticator, g *gallery.Gallery) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	cookies := apiauth.NewCookies(cfg)
	mw := apiauth.NewMiddleware(authn, cookies, guard.New(LoginPath))

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	s := &Server{
		cfg:       cfg,
		ginEngine: engine,
		handler:   handler.New(cfg, authn, cookies, mw, g),
		mw:        mw,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	h := s.handler

	s.ginEngine.GET("/healthz", h.Health)

	api := s.ginEngine.Group("/api")
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)
	api.GET("/user", h.User)

	pages := s.ginEngine.Group("/")
	pages.Use(apiauth.FlowSessions(s.cfg), gzip.Gzip(gzip.DefaultCompression))
	pages.StaticFS("/static", static.FS())

	pages.GET(LoginPath, h.LoginPage)
	pages.POST(LoginPath, h.LoginForm)
	pages.GET("/logout", h.LogoutPage)

	for _, page := range handler.Story {
		pages.GET(page.Path, s.mw.Page(h.StoryPageHandler(page)))
	}

	// media is already compressed
	media := s.ginEngine.Group("/gallery", apiauth.FlowSessions(s.cfg))
	media.GET("/media/:name", s.mw.Page(h.GalleryMedia))
	media.GET("/thumb/:name", s.mw.Page(h.GalleryThumbnail))
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

// Run serves on the configured address until ctx is cancelled, then drains
// open requests for up to ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.ginEngine,
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
	}

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		log.Info("Starting HTTP server", "listen", listener.Addr().String())
		err := srv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	grp.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return grp.Wait()
}

// requestLogger logs every request with a request ID. The query string is
// left out so nothing submitted in it ends up in the logs.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", requestID,
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("Request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("Request", fields...)
		default:
			log.Debug("Request", fields...)
		}
	}
}
