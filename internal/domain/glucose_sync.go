package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=glucose_sync.go -destination=glucose_sync_mock.go -package=domain

// NightscoutScanner streams records with from <= date < to in ascending date
// order, one page per call of fn.
type NightscoutScanner interface {
	ScanEntries(ctx context.Context, from, to time.Time, fn func([]Entry) error) error
	ScanTreatments(ctx context.Context, from, to time.Time, fn func([]Treatment) error) error
}

// GlucoseSink stores raw CGM entries and treatments as time series.
// LatestGlucoseTime returns the zero time when no glucose point is stored.
// The write methods return how many records were written.
type GlucoseSink interface {
	LatestGlucoseTime(ctx context.Context) (time.Time, error)
	WriteEntries(ctx context.Context, entries []Entry) (int, error)
	WriteTreatments(ctx context.Context, treatments []Treatment) (int, error)
}
