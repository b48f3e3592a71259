// Package server exposes the statistical engine over a JSON HTTP API.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/timesage/internal/anomaly"
	"github.com/emiliopalmerini/timesage/internal/forecasting"
	"github.com/emiliopalmerini/timesage/internal/learning"
	"github.com/emiliopalmerini/timesage/internal/ports"
	"github.com/emiliopalmerini/timesage/internal/recommend"
)

// Config holds server-specific configuration.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Server owns one instance of each model. Every model sits behind its own
// mutex: a forecasting request and an anomaly request proceed concurrently,
// while two forecasting requests serialize against each other. Each lock is
// held for the full train-then-predict sequence of a request.
type Server struct {
	cfg Config

	forecastMu sync.Mutex
	forecast   *forecasting.Model

	detectorMu sync.Mutex
	detector   *anomaly.Detector

	learningMu sync.Mutex
	learning   *learning.Module

	recommender *recommend.Engine

	feedbackRepo ports.FeedbackRepository
	metrics      ports.MetricsExporter

	router chi.Router
}

// New wires the models into an HTTP server. feedbackRepo may be nil when no
// database is configured; metrics must be non-nil (use the no-op exporter).
func New(
	cfg Config,
	forecast *forecasting.Model,
	detector *anomaly.Detector,
	learningModule *learning.Module,
	feedbackRepo ports.FeedbackRepository,
	metrics ports.MetricsExporter,
) *Server {
	s := &Server{
		cfg:          cfg,
		forecast:     forecast,
		detector:     detector,
		learning:     learningModule,
		recommender:  recommend.NewEngine(),
		feedbackRepo: feedbackRepo,
		metrics:      metrics,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/api/predict", s.handlePredict)
	r.Post("/api/detect-anomalies", s.handleDetectAnomalies)
	r.Post("/api/recommendations", s.handleRecommendations)
	r.Post("/api/productivity", s.handleProductivity)
	r.Post("/api/learn", s.handleLearn)

	s.router = r
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
