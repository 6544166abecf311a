// Package history persists computed daily doses in Postgres.
package history

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
)

type dailyDoseRow struct {
	Date             string    `gorm:"primaryKey;size:10"`
	UTCOffsetMinutes int       `gorm:"not null"`
	WindowStart      time.Time `gorm:"not null"`
	WindowEnd        time.Time `gorm:"not null"`
	NoData           bool      `gorm:"not null;default:false"`
	HourlyBasal      []float64 `gorm:"serializer:json"`
	Boluses          []float64 `gorm:"serializer:json"`
	TotalBasal       float64   `gorm:"not null"`
	TotalBolus       float64   `gorm:"not null"`
	TotalDose        float64   `gorm:"not null"`
	TreatmentCount   int       `gorm:"not null"`
	ComputedAt       time.Time `gorm:"not null"`
	UpdatedAt        time.Time
}

func (dailyDoseRow) TableName() string {
	return "daily_doses"
}

type Repository struct {
	db *gorm.DB
}

var _ domain.DoseHistoryRepository = (*Repository)(nil)

// Open connects to the database at dsn and migrates the schema.
func Open(dsn string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return NewRepository(db)
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&dailyDoseRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// UpsertDailyDose inserts dose or replaces the stored row for the same date.
func (r *Repository) UpsertDailyDose(ctx context.Context, dose *domain.DailyDose) error {
	row := dailyDoseRow{
		Date:             dose.Date,
		UTCOffsetMinutes: dose.UTCOffsetMinutes,
		WindowStart:      dose.WindowStart,
		WindowEnd:        dose.WindowEnd,
		NoData:           dose.NoData,
		HourlyBasal:      dose.HourlyBasal,
		Boluses:          dose.Boluses,
		TotalBasal:       dose.TotalBasal,
		TotalBolus:       dose.TotalBolus,
		TotalDose:        dose.TotalDose,
		TreatmentCount:   dose.TreatmentCount,
		ComputedAt:       dose.ComputedAt,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

// ListDailyDoses returns stored days with from <= date <= to, oldest first.
func (r *Repository) ListDailyDoses(ctx context.Context, from, to string) ([]*domain.DailyDose, error) {
	var rows []dailyDoseRow
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	doses := make([]*domain.DailyDose, 0, len(rows))
	for _, row := range rows {
		doses = append(doses, &domain.DailyDose{
			Date:             row.Date,
			UTCOffsetMinutes: row.UTCOffsetMinutes,
			WindowStart:      row.WindowStart.UTC(),
			WindowEnd:        row.WindowEnd.UTC(),
			NoData:           row.NoData,
			HourlyBasal:      row.HourlyBasal,
			Boluses:          row.Boluses,
			TotalBasal:       row.TotalBasal,
			TotalBolus:       row.TotalBolus,
			TotalDose:        row.TotalDose,
			TreatmentCount:   row.TreatmentCount,
			ComputedAt:       row.ComputedAt.UTC(),
		})
	}
	return doses, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
