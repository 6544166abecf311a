//go:build gcloud

package doserecorder

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
)

type bigQueryRecord struct {
	RecordedAt       time.Time `bigquery:"recorded_at"`
	RunID            string    `bigquery:"run_id"`
	Date             string    `bigquery:"date"`
	WindowStart      time.Time `bigquery:"window_start"`
	UTCOffsetMinutes int64     `bigquery:"utc_offset_minutes"`
	NoData           bool      `bigquery:"no_data"`
	HourlyBasal      []float64 `bigquery:"hourly_basal"`
	TotalBasal       float64   `bigquery:"total_basal"`
	TotalBolus       float64   `bigquery:"total_bolus"`
	TotalDose        float64   `bigquery:"total_dose"`
	BolusCount       int64     `bigquery:"bolus_count"`
	TreatmentCount   int64     `bigquery:"treatment_count"`
}

type bigQueryRecorder struct {
	client   *bigquery.Client
	inserter *bigquery.Inserter
	dataset  string
	table    string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.DoseRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "dose result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.BigQueryProjectID == "" {
		slog.WarnContext(ctx, "BigQuery project ID not configured, dose result recording disabled")
		return NewNoopRecorder(), nil
	}

	client, err := bigquery.NewClient(ctx, cfg.BigQueryProjectID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create BigQuery client, dose result recording disabled",
			slog.String("error", err.Error()),
			slog.String("project_id", cfg.BigQueryProjectID),
		)
		return NewNoopRecorder(), nil
	}

	table := client.Dataset(cfg.BigQueryDataset).Table(cfg.BigQueryTable)
	inserter := table.Inserter()

	slog.InfoContext(ctx, "dose result recorder initialized",
		slog.String("type", "bigquery"),
		slog.String("project_id", cfg.BigQueryProjectID),
		slog.String("dataset", cfg.BigQueryDataset),
		slog.String("table", cfg.BigQueryTable),
	)

	return &bigQueryRecorder{
		client:   client,
		inserter: inserter,
		dataset:  cfg.BigQueryDataset,
		table:    cfg.BigQueryTable,
	}, nil
}

func (r *bigQueryRecorder) RecordDailyDose(ctx context.Context, runID string, dose *domain.DailyDose) error {
	if dose == nil {
		return nil
	}
	if runID == "" {
		runID = "default"
	}

	record := &bigQueryRecord{
		RecordedAt:       time.Now(),
		RunID:            runID,
		Date:             dose.Date,
		WindowStart:      dose.WindowStart,
		UTCOffsetMinutes: int64(dose.UTCOffsetMinutes),
		NoData:           dose.NoData,
		HourlyBasal:      dose.HourlyBasal,
		TotalBasal:       dose.TotalBasal,
		TotalBolus:       dose.TotalBolus,
		TotalDose:        dose.TotalDose,
		BolusCount:       int64(len(dose.Boluses)),
		TreatmentCount:   int64(dose.TreatmentCount),
	}

	if err := r.inserter.Put(ctx, record); err != nil {
		slog.WarnContext(ctx, "failed to insert daily dose to BigQuery",
			slog.String("error", err.Error()),
			slog.String("date", dose.Date),
		)
	}

	return nil
}

func (r *bigQueryRecorder) Flush(ctx context.Context) error {
	return nil
}

func (r *bigQueryRecorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
