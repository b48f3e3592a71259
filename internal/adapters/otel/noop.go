package otel

import (
	"context"
	"time"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) ExportForecast(ctx context.Context, forecast *domain.Forecast, trainDuration time.Duration) error {
	return nil
}

func (e *NoOpExporter) ExportAnomalies(ctx context.Context, scanned, flagged int) error {
	return nil
}

func (e *NoOpExporter) ExportFeedback(ctx context.Context, category string) error {
	return nil
}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
