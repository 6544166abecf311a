//go:build !gcloud

package doserecorder

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
)

const (
	dailyMeasurement  = "insulin_daily"
	hourlyMeasurement = "insulin_hourly"
)

type influxDBRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.DoseRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "dose result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		slog.WarnContext(ctx, "InfluxDB token or org not configured, dose result recording disabled",
			slog.String("url", cfg.InfluxDBURL),
		)
		return NewNoopRecorder(), nil
	}

	client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)
	writeAPI := client.WriteAPIBlocking(cfg.InfluxDBOrg, cfg.InfluxDBBucket)

	slog.InfoContext(ctx, "dose result recorder initialized",
		slog.String("type", "influxdb"),
		slog.String("url", cfg.InfluxDBURL),
		slog.String("bucket", cfg.InfluxDBBucket),
	)

	return &influxDBRecorder{
		client:   client,
		writeAPI: writeAPI,
		bucket:   cfg.InfluxDBBucket,
		org:      cfg.InfluxDBOrg,
	}, nil
}

// RecordDailyDose writes one daily point and one point per hour. The series
// key is measurement, date and hour only, and points are stamped from the
// window start, so recomputing a day overwrites the previous values. The run
// id is stored as a field.
func (r *influxDBRecorder) RecordDailyDose(ctx context.Context, runID string, dose *domain.DailyDose) error {
	if dose == nil {
		return nil
	}

	points := dailyDosePoints(runID, dose)
	if err := r.writeAPI.WritePoint(ctx, points...); err != nil {
		slog.WarnContext(ctx, "failed to write daily dose to InfluxDB",
			slog.String("error", err.Error()),
			slog.String("date", dose.Date),
			slog.Int("point_count", len(points)),
		)
	}

	return nil
}

func dailyDosePoints(runID string, dose *domain.DailyDose) []*write.Point {
	if runID == "" {
		runID = "default"
	}

	points := make([]*write.Point, 0, 1+len(dose.HourlyBasal))
	points = append(points, influxdb2.NewPoint(
		dailyMeasurement,
		map[string]string{
			"date": dose.Date,
		},
		map[string]any{
			"run_id":             runID,
			"total_basal":        dose.TotalBasal,
			"total_bolus":        dose.TotalBolus,
			"total_dose":         dose.TotalDose,
			"bolus_count":        len(dose.Boluses),
			"treatment_count":    dose.TreatmentCount,
			"no_data":            dose.NoData,
			"utc_offset_minutes": dose.UTCOffsetMinutes,
		},
		dose.WindowStart,
	))

	// Slot h is the local hour h of the day, stamped WindowStart+h.
	for hour, units := range dose.HourlyBasal {
		points = append(points, influxdb2.NewPoint(
			hourlyMeasurement,
			map[string]string{
				"date": dose.Date,
				"hour": strconv.Itoa(hour),
			},
			map[string]any{
				"run_id": runID,
				"basal":  units,
			},
			dose.WindowStart.Add(time.Duration(hour)*time.Hour),
		))
	}

	return points
}

func (r *influxDBRecorder) Flush(ctx context.Context) error {
	return r.writeAPI.Flush(ctx)
}

func (r *influxDBRecorder) Close() error {
	if r.client != nil {
		r.client.Close()
	}
	return nil
}
