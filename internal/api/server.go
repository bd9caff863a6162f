package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/newthinker/sigtrail/internal/api/handler"
	"github.com/newthinker/sigtrail/internal/api/job"
	"github.com/newthinker/sigtrail/internal/api/response"
	"github.com/newthinker/sigtrail/internal/app"
	"github.com/newthinker/sigtrail/internal/metrics"
	"github.com/newthinker/sigtrail/internal/notifier"
)

// Server represents the HTTP server for sigtrail
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	deps       Dependencies
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	MetricsPath  string // empty disables the metrics endpoint
	JobTimeout   time.Duration
	MaxBodyBytes int64
}

// Dependencies holds the components the routes need
type Dependencies struct {
	App      *app.App
	Jobs     *job.Store
	Metrics  *metrics.Registry // optional
	Notifier notifier.Notifier // optional
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.App == nil {
		return nil, fmt.Errorf("app is required")
	}
	if deps.Jobs == nil {
		deps.Jobs = job.NewStore(100, time.Hour)
	}

	mux := http.NewServeMux()

	var h http.Handler = mux
	if deps.Metrics != nil {
		h = metrics.HTTPMiddleware(deps.Metrics)(h)
	}
	h = metrics.LoggingMiddleware(logger)(h)

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      h,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 2 * time.Minute, // synchronous batches fetch prices for every token
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
		deps:   deps,
	}

	s.setupRoutes(cfg)

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config) {
	signalsHandler := handler.NewSignalsHandler(s.deps.App, s.deps.Jobs, handler.Config{
		JobTimeout:   cfg.JobTimeout,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}, s.logger)
	if s.deps.Metrics != nil {
		signalsHandler.SetMetrics(s.deps.Metrics)
	}
	if s.deps.Notifier != nil {
		signalsHandler.SetNotifier(s.deps.Notifier)
	}

	s.mux.HandleFunc("POST /api/process-signals", signalsHandler.Process)
	s.mux.HandleFunc("POST /api/v1/jobs", signalsHandler.CreateJob)
	s.mux.HandleFunc("GET /api/v1/jobs", signalsHandler.ListJobs)
	s.mux.HandleFunc("GET /api/v1/jobs/{id}", signalsHandler.GetJob)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if s.deps.Metrics != nil && cfg.MetricsPath != "" {
		s.mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(s.deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	for k, v := range s.deps.App.GetStats() {
		resp[k] = v
	}
	response.JSON(w, http.StatusOK, resp)
}
