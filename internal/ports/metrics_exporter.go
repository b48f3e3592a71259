package ports

import (
	"context"
	"time"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

// MetricsExporter publishes analysis metrics to an external collector.
type MetricsExporter interface {
	ExportForecast(ctx context.Context, forecast *domain.Forecast, trainDuration time.Duration) error
	ExportAnomalies(ctx context.Context, scanned, flagged int) error
	ExportFeedback(ctx context.Context, category string) error
	Close(ctx context.Context) error
}
