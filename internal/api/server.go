// Package api provides the HTTP API server for the grid explorer.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	apierrors "github.com/narvanalabs/grid-explorer/internal/api/errors"
	"github.com/narvanalabs/grid-explorer/internal/api/handlers"
	"github.com/narvanalabs/grid-explorer/internal/api/health"
	"github.com/narvanalabs/grid-explorer/internal/api/middleware"
	"github.com/narvanalabs/grid-explorer/pkg/config"
)

// Version is the current version of the API server.
// This should be set at build time using ldflags.
var Version = "dev"

// Server represents the HTTP API server.
type Server struct {
	router        chi.Router
	httpServer    *http.Server
	store         handlers.CapacityStore
	config        *config.Config
	logger        *slog.Logger
	healthChecker *health.Checker
}

// NewServer creates a new API server over the capacity store. pinger may be
// nil, in which case the registry is reported as unchecked.
func NewServer(cfg *config.Config, st handlers.CapacityStore, pinger health.Pinger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store:  st,
		config: cfg,
		logger: logger,
	}

	// Data older than three poll intervals means the poller is stuck.
	s.healthChecker = health.NewChecker(pinger, st, 3*cfg.PollInterval, Version)

	s.setupRouter()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// setupRouter configures the router with middleware and routes.
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(middleware.Recovery(s.logger))
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteErrorWithRequestID(w,
			apierrors.NewNotFoundError("no route for "+r.URL.Path),
			chimiddleware.GetReqID(r.Context()))
	})

	r.Get("/health", s.healthChecker.Handler())

	statsHandler := handlers.NewStatsHandler(s.store, s.logger)
	nodeHandler := handlers.NewNodeHandler(s.store, s.logger)
	farmHandler := handlers.NewFarmHandler(s.store, s.logger)
	configHandler := handlers.NewConfigHandler(s.config.Ranges)
	refreshHandler := handlers.NewRefreshHandler(s.store, s.logger)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/stats", statsHandler.Get)
		r.Get("/countries", statsHandler.Countries)
		r.Get("/nodes", nodeHandler.List)
		r.Get("/farms", farmHandler.List)
		r.Get("/ranges", configHandler.Ranges)
		r.Post("/refresh", refreshHandler.Refresh)
	})

	s.router = r
}

// Start starts the HTTP server and blocks until ctx is done, Shutdown is
// called, or the listener fails. Only a listener failure returns an error.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting API server", "addr", s.httpServer.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Router returns the chi router for testing purposes.
func (s *Server) Router() chi.Router {
	return s.router
}
