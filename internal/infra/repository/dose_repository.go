package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
)

const (
	dailyDoseKeyPrefix = "dose:daily:"

	defaultDailyDoseTTL = 1 * time.Hour
)

type dailyDoseRecord struct {
	Date             string    `json:"date"`
	UTCOffsetMinutes int       `json:"utc_offset_minutes"`
	WindowStart      time.Time `json:"window_start"`
	WindowEnd        time.Time `json:"window_end"`
	NoData           bool      `json:"no_data"`
	HourlyBasal      []float64 `json:"hourly_basal,omitempty"`
	Boluses          []float64 `json:"boluses"`
	TotalBasal       float64   `json:"total_basal"`
	TotalBolus       float64   `json:"total_bolus"`
	TotalDose        float64   `json:"total_dose"`
	TreatmentCount   int       `json:"treatment_count"`
	ComputedAt       time.Time `json:"computed_at"`
}

type dailyDoseRepository struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewDailyDoseRepository caches computed days in Redis. scope separates
// results computed against different basal schedules.
func NewDailyDoseRepository(client *redis.Client, scope string, ttl time.Duration) domain.DailyDoseRepository {
	if ttl <= 0 {
		ttl = defaultDailyDoseTTL
	}

	prefix := dailyDoseKeyPrefix
	if scope != "" {
		prefix += scope + ":"
	}

	return &dailyDoseRepository{
		client:    client,
		keyPrefix: prefix,
		ttl:       ttl,
	}
}

func (r *dailyDoseRepository) key(date string) string {
	return r.keyPrefix + date
}

func (r *dailyDoseRepository) SaveDailyDose(ctx context.Context, dose *domain.DailyDose) error {
	if dose == nil || dose.Date == "" {
		return ErrInvalidDoseData
	}

	data, err := json.Marshal(dailyDoseRecord(*dose))
	if err != nil {
		return ErrInvalidDoseData
	}

	return r.client.Set(ctx, r.key(dose.Date), data, r.ttl).Err()
}

func (r *dailyDoseRepository) GetDailyDose(ctx context.Context, date string) (*domain.DailyDose, error) {
	data, err := r.client.Get(ctx, r.key(date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrDoseNotFound
		}
		return nil, err
	}

	var record dailyDoseRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, ErrInvalidDoseData
	}

	dose := domain.DailyDose(record)
	return &dose, nil
}

func (r *dailyDoseRepository) DeleteDailyDose(ctx context.Context, date string) error {
	return r.client.Del(ctx, r.key(date)).Err()
}
