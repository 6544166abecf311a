// Package influxsink mirrors Nightscout CGM entries and treatments into
// InfluxDB as raw time series.
package influxsink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
)

const (
	glucoseMeasurement   = "glucose"
	treatmentMeasurement = "treatment"
)

// lookbacks are tried in order when looking for the newest glucose point.
var lookbacks = []string{"-30d", "-100y"}

var _ domain.GlucoseSink = (*Sink)(nil)

type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// queryFunc runs a Flux query and returns the newest _time it produced.
type queryFunc func(ctx context.Context, flux string) (time.Time, bool, error)

type Sink struct {
	client influxdb2.Client
	write  func(ctx context.Context, points ...*write.Point) error
	query  queryFunc
	bucket string
}

func NewSink(ctx context.Context, cfg Config) (*Sink, error) {
	if cfg.Token == "" || cfg.Org == "" {
		return nil, errors.New("InfluxDB token and org are required for glucose sync")
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	writeAPI := client.WriteAPIBlocking(cfg.Org, cfg.Bucket)
	queryAPI := client.QueryAPI(cfg.Org)

	slog.InfoContext(ctx, "glucose sink initialized",
		slog.String("url", cfg.URL),
		slog.String("bucket", cfg.Bucket),
	)

	return &Sink{
		client: client,
		write:  writeAPI.WritePoint,
		query:  newestTime(queryAPI),
		bucket: cfg.Bucket,
	}, nil
}

func newestTime(q api.QueryAPI) queryFunc {
	return func(ctx context.Context, flux string) (time.Time, bool, error) {
		result, err := q.Query(ctx, flux)
		if err != nil {
			return time.Time{}, false, err
		}
		defer result.Close()

		var newest time.Time
		found := false
		for result.Next() {
			if t := result.Record().Time(); !found || t.After(newest) {
				newest = t
				found = true
			}
		}
		if err := result.Err(); err != nil {
			return time.Time{}, false, err
		}
		return newest, found, nil
	}
}

func latestGlucoseQuery(bucket, start string) string {
	return fmt.Sprintf(`from(bucket: %q)
  |> range(start: %s)
  |> filter(fn: (r) => r._measurement == %q and r._field == "sgv")
  |> keep(columns: ["_time"])
  |> group()
  |> sort(columns: ["_time"], desc: true)
  |> limit(n: 1)`, bucket, start, glucoseMeasurement)
}

// LatestGlucoseTime looks back 30 days first and only scans the whole bucket
// when that window is empty.
func (s *Sink) LatestGlucoseTime(ctx context.Context) (time.Time, error) {
	for _, start := range lookbacks {
		t, ok, err := s.query(ctx, latestGlucoseQuery(s.bucket, start))
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to query latest glucose time: %w", err)
		}
		if ok {
			slog.DebugContext(ctx, "found latest glucose point",
				slog.String("range", start),
				slog.Time("time", t),
			)
			return t.UTC(), nil
		}
	}
	return time.Time{}, nil
}

func (s *Sink) WriteEntries(ctx context.Context, entries []domain.Entry) (int, error) {
	points := entryPoints(entries)
	if err := s.writePoints(ctx, glucoseMeasurement, points); err != nil {
		return 0, err
	}
	return len(points), nil
}

func (s *Sink) WriteTreatments(ctx context.Context, treatments []domain.Treatment) (int, error) {
	points := treatmentPoints(treatments)
	if err := s.writePoints(ctx, treatmentMeasurement, points); err != nil {
		return 0, err
	}
	return len(points), nil
}

func (s *Sink) writePoints(ctx context.Context, measurement string, points []*write.Point) error {
	if len(points) == 0 {
		return nil
	}
	if err := s.write(ctx, points...); err != nil {
		return fmt.Errorf("failed to write %d %s points: %w", len(points), measurement, err)
	}
	return nil
}

func (s *Sink) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// entryPoints keeps dated sensor readings; entries without an sgv are
// calibrations or meter checks.
func entryPoints(entries []domain.Entry) []*write.Point {
	points := make([]*write.Point, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		if !e.Date.Valid() || e.SGV <= 0 {
			continue
		}

		fields := map[string]any{
			"sgv": int64(math.Round(e.SGV)),
		}
		if e.Direction != "" {
			fields["direction"] = e.Direction
		}
		points = append(points, influxdb2.NewPoint(glucoseMeasurement, nil, fields, e.Time()))
	}
	return points
}

// treatmentPoints keeps dated treatments that carry a dose, carbs or a rate.
// Notes and other bare events have no field to write.
func treatmentPoints(treatments []domain.Treatment) []*write.Point {
	points := make([]*write.Point, 0, len(treatments))
	for i := range treatments {
		t := &treatments[i]
		if !t.Date.Valid() {
			continue
		}

		fields := make(map[string]any, 4)
		if t.Insulin > 0 {
			fields["insulin"] = t.Insulin
		}
		if t.Carbs > 0 {
			fields["carbs"] = t.Carbs
		}
		if t.IsTempBasal() {
			fields["rate"] = t.BasalRate()
			fields["duration_ms"] = t.DurationInMilliseconds
		}
		if len(fields) == 0 {
			continue
		}

		eventType := t.EventType
		if eventType == "" {
			eventType = "unknown"
		}
		points = append(points, influxdb2.NewPoint(
			treatmentMeasurement,
			map[string]string{"event_type": eventType},
			fields,
			t.Time(),
		))
	}
	return points
}
