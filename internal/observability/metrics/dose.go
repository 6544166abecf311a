package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	doseMeterName = "dose.service"
)

type DoseMetrics struct {
	daysComputed        metric.Int64Counter
	computationDuration metric.Float64Histogram
	cacheLookups        metric.Int64Counter
	nightscoutRequests  metric.Int64Counter
	totalDose           metric.Float64Histogram
}

func NewDoseMetrics() (*DoseMetrics, error) {
	meter := otel.Meter(doseMeterName)

	daysComputed, err := meter.Int64Counter(
		"dose_days_computed_total",
		metric.WithDescription("Total number of daily dose computations"),
		metric.WithUnit("{day}"),
	)
	if err != nil {
		return nil, err
	}

	computationDuration, err := meter.Float64Histogram(
		"dose_computation_duration_seconds",
		metric.WithDescription("Time spent computing one day including upstream fetches"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
		),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		"dose_cache_lookups_total",
		metric.WithDescription("Daily dose cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	nightscoutRequests, err := meter.Int64Counter(
		"dose_nightscout_requests_total",
		metric.WithDescription("Requests sent to Nightscout"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	totalDose, err := meter.Float64Histogram(
		"dose_total_daily_insulin_units",
		metric.WithDescription("Total daily insulin of computed days"),
		metric.WithUnit("U"),
		metric.WithExplicitBucketBoundaries(
			5, 10, 20, 30, 40, 50, 75, 100, 150,
		),
	)
	if err != nil {
		return nil, err
	}

	return &DoseMetrics{
		daysComputed:        daysComputed,
		computationDuration: computationDuration,
		cacheLookups:        cacheLookups,
		nightscoutRequests:  nightscoutRequests,
		totalDose:           totalDose,
	}, nil
}

// RecordDayComputed counts one computed day. outcome is one of "ok",
// "no_data" or "error".
func (m *DoseMetrics) RecordDayComputed(ctx context.Context, outcome string) {
	m.daysComputed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *DoseMetrics) RecordComputationDuration(ctx context.Context, outcome string, duration time.Duration) {
	m.computationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *DoseMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
}

func (m *DoseMetrics) RecordNightscoutRequest(ctx context.Context, endpoint string, status int) {
	m.nightscoutRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.Int("status", status),
	))
}

func (m *DoseMetrics) RecordTotalDose(ctx context.Context, units float64) {
	m.totalDose.Record(ctx, units)
}
