package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amaumene/cinetrack/internal/api/handlers"
	"github.com/amaumene/cinetrack/internal/api/middleware"
	"github.com/amaumene/cinetrack/internal/config"
	"github.com/amaumene/cinetrack/internal/controllers"
	"github.com/amaumene/cinetrack/internal/library"
	"github.com/amaumene/cinetrack/internal/metrics"
	"github.com/amaumene/cinetrack/internal/queue"
	"github.com/sirupsen/logrus"
)

// Deps are the components the HTTP API serves
type Deps struct {
	Library    *library.Library
	Queue      *queue.Queue
	SearchCtrl *controllers.SearchController
	EnrichCtrl *controllers.EnrichController
	Metrics    *metrics.Metrics
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	deps   Deps
	logger *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, deps Deps, logger *logrus.Logger) *Server {
	s := &Server{
		deps:   deps,
		logger: logger,
	}

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the routed handler wrapped in the logging middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.setupRoutes(mux)
	return middleware.Logging(mux, s.logger)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	d := s.deps

	// Health check
	healthHandler := handlers.NewHealthHandler(d.Library, s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	// Status endpoint
	statusHandler := handlers.NewStatusHandler(d.SearchCtrl, d.Queue, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	// Records
	records := handlers.NewRecordsHandler(d.Library, d.SearchCtrl, d.EnrichCtrl, d.Queue, s.logger)
	mux.HandleFunc("GET /api/records", records.List)
	mux.HandleFunc("POST /api/records", records.Create)
	mux.HandleFunc("GET /api/records/{id}", records.Get)
	mux.HandleFunc("POST /api/records/{id}/check", records.Check)
	mux.HandleFunc("POST /api/records/{id}/details", records.Details)

	// Enrichment queue
	queueHandler := handlers.NewQueueHandler(d.Queue, s.logger)
	mux.HandleFunc("GET /api/queue", queueHandler.Get)
	mux.HandleFunc("POST /api/queue/pause", queueHandler.Pause)
	mux.HandleFunc("POST /api/queue/resume", queueHandler.Resume)

	// Statistics
	stats := handlers.NewStatsHandler(d.SearchCtrl, s.logger)
	mux.HandleFunc("GET /api/stats", stats.Stats)
	mux.HandleFunc("GET /api/featured", stats.Featured)

	// Prometheus
	mux.Handle("GET /metrics", d.Metrics.Handler())
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
