// Package app wires configuration, storage, metrics and the HTTP server.
package app

import (
	"context"
	"log"
	"math/rand"
	"os/signal"
	"syscall"

	"github.com/emiliopalmerini/timesage/internal/adapters/otel"
	"github.com/emiliopalmerini/timesage/internal/adapters/turso"
	"github.com/emiliopalmerini/timesage/internal/anomaly"
	"github.com/emiliopalmerini/timesage/internal/forecasting"
	"github.com/emiliopalmerini/timesage/internal/learning"
	"github.com/emiliopalmerini/timesage/internal/ports"
	"github.com/emiliopalmerini/timesage/internal/server"
)

// Run starts the API server and blocks until an interrupt arrives.
func Run(cfg *Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var forecastRNG, detectorRNG *rand.Rand
	if cfg.Seed != 0 {
		forecastRNG = rand.New(rand.NewSource(cfg.Seed))
		detectorRNG = rand.New(rand.NewSource(cfg.Seed + 1))
	}

	var feedbackRepo ports.FeedbackRepository
	if cfg.TursoDatabaseURL != "" {
		db, err := turso.NewDB(cfg.TursoDatabaseURL, cfg.TursoAuthToken)
		if err != nil {
			return err
		}
		defer db.Close()
		feedbackRepo = turso.NewFeedbackRepository(db)
		log.Printf("feedback persistence enabled")
	}

	var metrics ports.MetricsExporter = otel.NewNoOpExporter()
	if cfg.OTELEnabled {
		exporter, err := otel.NewExporter(ctx, otel.Config{
			Endpoint: cfg.OTELEndpoint,
			Enabled:  cfg.OTELEnabled,
			Insecure: cfg.OTELInsecure,
		})
		if err != nil {
			log.Printf("metrics disabled: %v", err)
		} else {
			metrics = exporter
		}
	}
	defer func() {
		if err := metrics.Close(context.Background()); err != nil {
			log.Printf("metrics shutdown failed: %v", err)
		}
	}()

	srv := server.New(
		server.Config{Addr: cfg.Addr, ShutdownTimeout: cfg.ShutdownTimeout},
		forecasting.NewModel(forecastRNG),
		anomaly.NewDetector(cfg.Contamination, detectorRNG),
		learning.NewModule(cfg.FeedbackHistorySize),
		feedbackRepo,
		metrics,
	)

	log.Printf("listening on %s", cfg.Addr)
	return srv.Start(ctx)
}
