package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=nightscout_repository.go -destination=nightscout_repository_mock.go -package=domain

// NightscoutRepository supplies profile versions and treatments.
// GetTreatments returns treatments with from <= date < to.
type NightscoutRepository interface {
	GetProfiles(ctx context.Context) ([]Profile, error)
	GetTreatments(ctx context.Context, from, to time.Time) ([]Treatment, error)
}
