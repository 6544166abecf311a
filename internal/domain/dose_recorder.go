package domain

import "context"

//go:generate mockgen -source=dose_recorder.go -destination=dose_recorder_mock.go -package=domain

type DoseRecorder interface {
	RecordDailyDose(ctx context.Context, runID string, dose *DailyDose) error
	Flush(ctx context.Context) error
	Close() error
}
