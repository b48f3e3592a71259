// Package otel exports analysis metrics to an OTEL Collector over OTLP/gRPC.
package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

const (
	serviceName    = "timesage"
	serviceVersion = "1.0.0"
)

// Exporter publishes per-request analysis metrics.
type Exporter struct {
	provider          *sdkmetric.MeterProvider
	meter             metric.Meter
	forecastsTotal    metric.Int64Counter
	trainDurationHist metric.Float64Histogram
	confidenceHist    metric.Float64Histogram
	entriesScanned    metric.Int64Counter
	anomaliesFlagged  metric.Int64Counter
	feedbackTotal     metric.Int64Counter
}

// NewExporter creates an OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	forecastsTotal, err := meter.Int64Counter(
		"timesage_forecasts_total",
		metric.WithDescription("Total forecasts served"),
		metric.WithUnit("{forecast}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating forecasts counter: %w", err)
	}

	trainDurationHist, err := meter.Float64Histogram(
		"timesage_train_duration_seconds",
		metric.WithDescription("Model training duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating train duration histogram: %w", err)
	}

	confidenceHist, err := meter.Float64Histogram(
		"timesage_forecast_confidence",
		metric.WithDescription("Confidence of served forecasts"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating confidence histogram: %w", err)
	}

	entriesScanned, err := meter.Int64Counter(
		"timesage_anomaly_entries_scanned_total",
		metric.WithDescription("Timesheet entries scanned for anomalies"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating entries counter: %w", err)
	}

	anomaliesFlagged, err := meter.Int64Counter(
		"timesage_anomalies_flagged_total",
		metric.WithDescription("Entries flagged as anomalous"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating anomalies counter: %w", err)
	}

	feedbackTotal, err := meter.Int64Counter(
		"timesage_feedback_total",
		metric.WithDescription("Prediction error records received"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating feedback counter: %w", err)
	}

	return &Exporter{
		provider:          provider,
		meter:             meter,
		forecastsTotal:    forecastsTotal,
		trainDurationHist: trainDurationHist,
		confidenceHist:    confidenceHist,
		entriesScanned:    entriesScanned,
		anomaliesFlagged:  anomaliesFlagged,
		feedbackTotal:     feedbackTotal,
	}, nil
}

// ExportForecast records one served forecast.
func (e *Exporter) ExportForecast(ctx context.Context, forecast *domain.Forecast, trainDuration time.Duration) error {
	opt := metric.WithAttributes(attribute.String("trend", forecast.Trend))

	e.forecastsTotal.Add(ctx, 1, opt)
	e.trainDurationHist.Record(ctx, trainDuration.Seconds(), opt)
	e.confidenceHist.Record(ctx, forecast.Confidence, opt)

	return nil
}

// ExportAnomalies records one detection pass.
func (e *Exporter) ExportAnomalies(ctx context.Context, scanned, flagged int) error {
	e.entriesScanned.Add(ctx, int64(scanned))
	e.anomaliesFlagged.Add(ctx, int64(flagged))
	return nil
}

// ExportFeedback records one feedback submission.
func (e *Exporter) ExportFeedback(ctx context.Context, category string) error {
	e.feedbackTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
