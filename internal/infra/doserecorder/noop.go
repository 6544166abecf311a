package doserecorder

import (
	"context"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
)

type noopRecorder struct{}

func NewNoopRecorder() domain.DoseRecorder {
	return &noopRecorder{}
}

func (n *noopRecorder) RecordDailyDose(_ context.Context, _ string, _ *domain.DailyDose) error {
	return nil
}

func (n *noopRecorder) Flush(_ context.Context) error {
	return nil
}

func (n *noopRecorder) Close() error {
	return nil
}
