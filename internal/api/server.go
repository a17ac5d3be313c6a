package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Belphemur/MediaFetch/internal/config"
	"github.com/Belphemur/MediaFetch/internal/health"
	"github.com/Belphemur/MediaFetch/internal/models"
	"github.com/Belphemur/MediaFetch/internal/services"
	"github.com/Belphemur/MediaFetch/internal/storage"
)

type (
	// ArtifactReader opens stored artifacts for streaming.
	ArtifactReader interface {
		Open(ctx context.Context, key string) (*storage.Object, error)
	}

	// ReadinessChecker runs the dependency checks behind /health/ready.
	ReadinessChecker interface {
		Run(ctx context.Context) health.Report
	}

	ServerConfig struct {
		Address       string
		Port          int
		DefaultFormat models.Format
	}

	// Server is the HTTP front of the service: echo routes wrapped with gzip
	// compression for JSON responses.
	Server struct {
		ec      *echo.Echo
		handler http.Handler
		srv     *http.Server

		fetcher       services.MediaFetcher
		store         ArtifactReader
		checker       ReadinessChecker
		defaultFormat models.Format
	}
)

// NewServer builds the router and registers every route.
func NewServer(cfg ServerConfig, fetcher services.MediaFetcher, store ArtifactReader, checker ReadinessChecker) (*Server, error) {
	if !cfg.DefaultFormat.Valid() {
		cfg.DefaultFormat = models.FormatOriginal
	}

	ec := echo.New()
	ec.HideBanner = true
	ec.HidePort = true
	ec.Validator = newRequestValidator()
	ec.HTTPErrorHandler = errorHandler
	ec.OnAddRouteHandler = func(_ string, route echo.Route, _ echo.HandlerFunc, _ []echo.MiddlewareFunc) {
		logger := config.GetLogger()
		logger.Debug().Str("method", route.Method).Str("path", route.Path).Msg("Registered route")
	}

	ec.Use(middleware.Recover())
	ec.Use(requestLogger())

	s := &Server{
		ec:            ec,
		fetcher:       fetcher,
		store:         store,
		checker:       checker,
		defaultFormat: cfg.DefaultFormat,
	}
	s.setRoutes()

	wrap, err := gzhttp.NewWrapper(gzhttp.ContentTypes([]string{echo.MIMEApplicationJSON}))
	if err != nil {
		return nil, fmt.Errorf("failed to configure compression: %w", err)
	}
	s.handler = wrap(ec)
	s.srv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) setRoutes() {
	s.ec.GET("/health", s.health)
	s.ec.GET("/health/ready", s.ready)

	s.ec.GET("/mp3", s.fetchMP3)
	s.ec.GET("/download-video", s.fetchVideo)
	s.ec.GET("/download", s.fetch)
	s.ec.GET("/jobs/:id", s.job)

	s.ec.GET("/downloads/:job/:filename", s.serveDownload)
	s.ec.HEAD("/downloads/:job/:filename", s.serveDownload)
}

// Handler returns the root handler, including compression.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Start serves until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
