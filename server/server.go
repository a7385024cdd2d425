// Package server exposes the conversion pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/darianmavgo/tabconv/config"
	"github.com/darianmavgo/tabconv/converters"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for the conversion API.
type Server struct {
	cfg      *config.Config
	pipeline *converters.Pipeline
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, pipeline *converters.Pipeline) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(recoverer)
	if timeout := s.cfg.Timeouts().Request; timeout > 0 {
		s.router.Use(middleware.Timeout(timeout))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/routes", s.handleListRoutes)
		// e.g. POST /api/csv-to-sql
		r.Post("/{conversion}", s.handleConvert)
	})

	s.router.NotFound(handleNotFound)
	s.router.MethodNotAllowed(handleNotFound)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully within the
// configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	timeouts := s.cfg.Timeouts()
	s.server = &http.Server{
		Addr:        s.cfg.Addr(),
		Handler:     s.router,
		ReadTimeout: timeouts.Read,
		IdleTimeout: 60 * time.Second,
	}

	if s.cfg.KeepaliveURL != "" {
		go Keepalive(ctx, http.DefaultClient, s.cfg.KeepaliveURL, timeouts.Keepalive)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", s.cfg.Addr(), "temp_dir", s.cfg.TempDir)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server", "timeout", timeouts.Shutdown.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
