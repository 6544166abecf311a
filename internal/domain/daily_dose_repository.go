package domain

import "context"

//go:generate mockgen -source=daily_dose_repository.go -destination=daily_dose_repository_mock.go -package=domain

type DailyDoseRepository interface {
	SaveDailyDose(ctx context.Context, dose *DailyDose) error
	GetDailyDose(ctx context.Context, date string) (*DailyDose, error)
	DeleteDailyDose(ctx context.Context, date string) error
}

type DoseHistoryRepository interface {
	UpsertDailyDose(ctx context.Context, dose *DailyDose) error
	ListDailyDoses(ctx context.Context, from, to string) ([]*DailyDose, error)
}
