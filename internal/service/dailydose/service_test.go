package dailydose

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/service/aggregate"
)

var fixedNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func flatProfiles(offset int) []domain.Profile {
	return []domain.Profile{{
		DefaultProfile: "Default",
		UTCOffset:      &offset,
		Store: map[string]domain.ProfileStore{
			"Default": {Basal: []domain.BasalEntry{{TimeAsSeconds: 0, Value: 1.0}}},
			"Night":   {Basal: []domain.BasalEntry{{TimeAsSeconds: 0, Value: 0.5}}},
		},
	}}
}

func bolusAt(date string, hour int, units float64) domain.Treatment {
	day, _ := domain.ParseDate(date)
	return domain.Treatment{
		Date:    domain.TimestampFromTime(day.Add(time.Duration(hour) * time.Hour)),
		Insulin: units,
	}
}

type mocks struct {
	source   *domain.MockNightscoutRepository
	cache    *domain.MockDailyDoseRepository
	history  *domain.MockDoseHistoryRepository
	recorder *domain.MockDoseRecorder
}

func newTestService(t *testing.T, cfg Config) (*Service, mocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := mocks{
		source:   domain.NewMockNightscoutRepository(ctrl),
		cache:    domain.NewMockDailyDoseRepository(ctrl),
		history:  domain.NewMockDoseHistoryRepository(ctrl),
		recorder: domain.NewMockDoseRecorder(ctrl),
	}

	svc := NewService(m.source, m.cache, m.history, m.recorder, aggregate.NewAggregator(), nil, cfg)
	svc.now = func() time.Time { return fixedNow }
	return svc, m
}

func TestService_ComputeDay_CacheMiss(t *testing.T) {
	svc, m := newTestService(t, Config{})
	ctx := context.Background()

	from := time.Date(2024, 12, 12, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	m.cache.EXPECT().GetDailyDose(gomock.Any(), "2024-12-12").Return(nil, domain.ErrDoseNotFound)
	m.source.EXPECT().GetProfiles(gomock.Any()).Return(flatProfiles(0), nil)
	m.source.EXPECT().GetTreatments(gomock.Any(), from, to).Return([]domain.Treatment{bolusAt("2024-12-12", 1, 5)}, nil)
	m.cache.EXPECT().SaveDailyDose(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, dose *domain.DailyDose) error {
			if dose.TotalDose != 29 {
				t.Errorf("cached TotalDose = %v, want 29", dose.TotalDose)
			}
			return nil
		})
	m.history.EXPECT().UpsertDailyDose(gomock.Any(), gomock.Any()).Return(nil)
	m.recorder.EXPECT().RecordDailyDose(gomock.Any(), "run-1", gomock.Any()).Return(nil)

	res, err := svc.ComputeDay(ctx, "2024-12-12", ComputeOptions{RunID: "run-1"})
	if err != nil {
		t.Fatalf("ComputeDay() error = %v", err)
	}
	if res.Cached {
		t.Error("Cached = true, want false")
	}
	if res.Result == nil || res.Dose.TotalBasal != 24 || res.Dose.TotalDose != 29 {
		t.Errorf("dose = %+v, want 24/29", res.Dose)
	}
	if !res.Dose.ComputedAt.Equal(fixedNow) {
		t.Errorf("ComputedAt = %v, want %v", res.Dose.ComputedAt, fixedNow)
	}
}

func TestService_ComputeDay_CacheHit(t *testing.T) {
	svc, m := newTestService(t, Config{})

	cached := &domain.DailyDose{Date: "2024-12-12", TotalDose: 31.4}
	m.cache.EXPECT().GetDailyDose(gomock.Any(), "2024-12-12").Return(cached, nil)

	res, err := svc.ComputeDay(context.Background(), "2024-12-12", ComputeOptions{})
	if err != nil {
		t.Fatalf("ComputeDay() error = %v", err)
	}
	if !res.Cached || res.Dose != cached || res.Result != nil {
		t.Errorf("ComputeDay() = %+v, want cached dose", res)
	}
}

func TestService_ComputeDay_RefreshSkipsCacheLookup(t *testing.T) {
	svc, m := newTestService(t, Config{})

	m.source.EXPECT().GetProfiles(gomock.Any()).Return(flatProfiles(0), nil)
	m.source.EXPECT().GetTreatments(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	m.cache.EXPECT().SaveDailyDose(gomock.Any(), gomock.Any()).Return(nil)
	m.history.EXPECT().UpsertDailyDose(gomock.Any(), gomock.Any()).Return(nil)
	m.recorder.EXPECT().RecordDailyDose(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	res, err := svc.ComputeDay(context.Background(), "2024-12-12", ComputeOptions{Refresh: true})
	if err != nil {
		t.Fatalf("ComputeDay() error = %v", err)
	}
	if !res.Dose.NoData {
		t.Error("NoData = false, want true")
	}
}

func TestService_ComputeDay_DayInProgressIsNotCached(t *testing.T) {
	svc, m := newTestService(t, Config{})
	today := fixedNow.Format(domain.DateLayout)

	m.cache.EXPECT().GetDailyDose(gomock.Any(), today).Return(nil, domain.ErrDoseNotFound)
	m.source.EXPECT().GetProfiles(gomock.Any()).Return(flatProfiles(0), nil)
	m.source.EXPECT().GetTreatments(gomock.Any(), gomock.Any(), gomock.Any()).Return([]domain.Treatment{bolusAt(today, 2, 1)}, nil)
	m.history.EXPECT().UpsertDailyDose(gomock.Any(), gomock.Any()).Return(nil)
	m.recorder.EXPECT().RecordDailyDose(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	if _, err := svc.ComputeDay(context.Background(), today, ComputeOptions{}); err != nil {
		t.Fatalf("ComputeDay() error = %v", err)
	}
}

func TestService_ComputeDay_SinkFailuresAreTolerated(t *testing.T) {
	svc, m := newTestService(t, Config{})
	sinkErr := errors.New("sink down")

	m.cache.EXPECT().GetDailyDose(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
	m.source.EXPECT().GetProfiles(gomock.Any()).Return(flatProfiles(0), nil)
	m.source.EXPECT().GetTreatments(gomock.Any(), gomock.Any(), gomock.Any()).Return([]domain.Treatment{bolusAt("2024-12-12", 2, 1)}, nil)
	m.cache.EXPECT().SaveDailyDose(gomock.Any(), gomock.Any()).Return(sinkErr)
	m.history.EXPECT().UpsertDailyDose(gomock.Any(), gomock.Any()).Return(sinkErr)
	m.recorder.EXPECT().RecordDailyDose(gomock.Any(), gomock.Any(), gomock.Any()).Return(sinkErr)

	res, err := svc.ComputeDay(context.Background(), "2024-12-12", ComputeOptions{})
	if err != nil {
		t.Fatalf("ComputeDay() error = %v", err)
	}
	if res.Dose.TotalDose != 25 {
		t.Errorf("TotalDose = %v, want 25", res.Dose.TotalDose)
	}
}

func TestService_ComputeDay_Errors(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		setup   func(m mocks)
		wantErr error
	}{
		{
			name:    "invalid date",
			date:    "2024-12-32",
			setup:   func(m mocks) {},
			wantErr: domain.ErrInvalidDate,
		},
		{
			name: "upstream failure",
			date: "2024-12-12",
			setup: func(m mocks) {
				m.cache.EXPECT().GetDailyDose(gomock.Any(), gomock.Any()).Return(nil, domain.ErrDoseNotFound)
				m.source.EXPECT().GetProfiles(gomock.Any()).Return(nil, domain.ErrUpstream)
			},
			wantErr: domain.ErrUpstream,
		},
		{
			name: "profile without offset",
			date: "2024-12-12",
			setup: func(m mocks) {
				m.cache.EXPECT().GetDailyDose(gomock.Any(), gomock.Any()).Return(nil, domain.ErrDoseNotFound)
				m.source.EXPECT().GetProfiles(gomock.Any()).Return([]domain.Profile{{DefaultProfile: "Default"}}, nil)
			},
			wantErr: domain.ErrMissingField,
		},
		{
			name: "no profiles",
			date: "2024-12-12",
			setup: func(m mocks) {
				m.cache.EXPECT().GetDailyDose(gomock.Any(), gomock.Any()).Return(nil, domain.ErrDoseNotFound)
				m.source.EXPECT().GetProfiles(gomock.Any()).Return(nil, nil)
			},
			wantErr: domain.ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService(t, Config{})
			tt.setup(m)

			_, err := svc.ComputeDay(context.Background(), tt.date, ComputeOptions{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ComputeDay() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_ComputeDay_OptionalCollaborators(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := domain.NewMockNightscoutRepository(ctrl)
	source.EXPECT().GetProfiles(gomock.Any()).Return(flatProfiles(0), nil)
	source.EXPECT().GetTreatments(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	svc := NewService(source, nil, nil, nil, nil, nil, Config{})

	res, err := svc.ComputeDay(context.Background(), "2024-12-12", ComputeOptions{})
	if err != nil {
		t.Fatalf("ComputeDay() error = %v", err)
	}
	if !res.Dose.NoData {
		t.Error("NoData = false, want true")
	}
}

func TestService_ComputeRange(t *testing.T) {
	svc, m := newTestService(t, Config{Concurrency: 2})

	var mu sync.Mutex
	requested := map[time.Time]bool{}

	m.cache.EXPECT().GetDailyDose(gomock.Any(), gomock.Any()).Return(nil, domain.ErrDoseNotFound).Times(3)
	m.source.EXPECT().GetProfiles(gomock.Any()).Return(flatProfiles(0), nil).Times(3)
	m.source.EXPECT().GetTreatments(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, from, _ time.Time) ([]domain.Treatment, error) {
			mu.Lock()
			requested[from] = true
			mu.Unlock()
			return []domain.Treatment{bolusAt(from.Format(domain.DateLayout), 3, float64(from.Day()))}, nil
		}).Times(3)
	m.cache.EXPECT().SaveDailyDose(gomock.Any(), gomock.Any()).Return(nil).Times(3)
	m.history.EXPECT().UpsertDailyDose(gomock.Any(), gomock.Any()).Return(nil).Times(3)
	m.recorder.EXPECT().RecordDailyDose(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(3)
	m.recorder.EXPECT().Flush(gomock.Any()).Return(nil)

	results, err := svc.ComputeRange(context.Background(), "2024-12-30", "2025-01-01", ComputeOptions{})
	if err != nil {
		t.Fatalf("ComputeRange() error = %v", err)
	}

	wantDates := []string{"2024-12-30", "2024-12-31", "2025-01-01"}
	wantBolus := []float64{30, 31, 1}
	if len(results) != len(wantDates) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(wantDates))
	}
	for i, res := range results {
		if res.Dose.Date != wantDates[i] {
			t.Errorf("results[%d].Date = %s, want %s", i, res.Dose.Date, wantDates[i])
		}
		if res.Dose.TotalBolus != wantBolus[i] {
			t.Errorf("results[%d].TotalBolus = %v, want %v", i, res.Dose.TotalBolus, wantBolus[i])
		}
	}
	if len(requested) != 3 {
		t.Errorf("distinct windows fetched = %d, want 3", len(requested))
	}
}

func TestService_ComputeRange_InvalidRange(t *testing.T) {
	svc, _ := newTestService(t, Config{MaxRangeDays: 7})

	tests := []struct {
		name     string
		from, to string
		wantErr  error
	}{
		{name: "reversed", from: "2024-12-12", to: "2024-12-11", wantErr: domain.ErrInvalidRange},
		{name: "too long", from: "2024-12-01", to: "2024-12-08", wantErr: domain.ErrInvalidRange},
		{name: "bad from", from: "yesterday", to: "2024-12-08", wantErr: domain.ErrInvalidDate},
		{name: "bad to", from: "2024-12-01", to: "", wantErr: domain.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ComputeRange(context.Background(), tt.from, tt.to, ComputeOptions{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ComputeRange() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_ComputeRange_FailureCancels(t *testing.T) {
	svc, m := newTestService(t, Config{Concurrency: 1})

	m.cache.EXPECT().GetDailyDose(gomock.Any(), gomock.Any()).Return(nil, domain.ErrDoseNotFound).AnyTimes()
	m.source.EXPECT().GetProfiles(gomock.Any()).Return(nil, domain.ErrUpstream).Times(1)

	_, err := svc.ComputeRange(context.Background(), "2024-12-01", "2024-12-05", ComputeOptions{})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("ComputeRange() error = %v, want ErrUpstream", err)
	}
}

func TestService_Calculate(t *testing.T) {
	svc, _ := newTestService(t, Config{})

	treatments := []domain.Treatment{bolusAt("2024-12-12", 4, 2)}

	res, err := svc.Calculate(context.Background(), CalculateRequest{
		Profiles:   flatProfiles(0),
		Treatments: treatments,
		Date:       "2024-12-12",
	})
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if res.TotalDose != 26 {
		t.Errorf("TotalDose = %v, want 26", res.TotalDose)
	}

	res, err = svc.Calculate(context.Background(), CalculateRequest{
		Profiles:     flatProfiles(0),
		Treatments:   treatments,
		Date:         "2024-12-12",
		ScheduleName: "Night",
	})
	if err != nil {
		t.Fatalf("Calculate(Night) error = %v", err)
	}
	if res.TotalDose != 14 {
		t.Errorf("TotalDose(Night) = %v, want 14", res.TotalDose)
	}

	_, err = svc.Calculate(context.Background(), CalculateRequest{
		Profiles:     flatProfiles(0),
		Treatments:   treatments,
		Date:         "2024-12-12",
		ScheduleName: "Missing",
	})
	if !errors.Is(err, domain.ErrMissingField) {
		t.Errorf("Calculate(Missing) error = %v, want ErrMissingField", err)
	}
}

func TestService_History(t *testing.T) {
	svc, m := newTestService(t, Config{})

	stored := []*domain.DailyDose{{Date: "2024-12-11"}, {Date: "2024-12-12"}}
	m.history.EXPECT().ListDailyDoses(gomock.Any(), "2024-12-11", "2024-12-12").Return(stored, nil)

	got, err := svc.History(context.Background(), "2024-12-11", "2024-12-12")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len(History()) = %d, want 2", len(got))
	}

	if _, err := svc.History(context.Background(), "2024-12-12", "2024-12-11"); !errors.Is(err, domain.ErrInvalidRange) {
		t.Errorf("History(reversed) error = %v, want ErrInvalidRange", err)
	}
}

func TestService_History_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewService(domain.NewMockNightscoutRepository(ctrl), nil, nil, nil, nil, nil, Config{})

	if _, err := svc.History(context.Background(), "2024-12-11", "2024-12-12"); !errors.Is(err, domain.ErrHistoryOff) {
		t.Errorf("History() error = %v, want ErrHistoryOff", err)
	}
}

type invalidatingSource struct {
	domain.NightscoutRepository
	invalidated int
}

func (s *invalidatingSource) InvalidateProfiles() { s.invalidated++ }

func TestService_ComputeDay_RefreshDropsCachedProfiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := domain.NewMockNightscoutRepository(ctrl)
	inner.EXPECT().GetProfiles(gomock.Any()).Return(flatProfiles(0), nil).Times(2)
	inner.EXPECT().GetTreatments(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)

	source := &invalidatingSource{NightscoutRepository: inner}
	svc := NewService(source, nil, nil, nil, nil, nil, Config{})

	if _, err := svc.ComputeDay(context.Background(), "2024-12-12", ComputeOptions{}); err != nil {
		t.Fatalf("ComputeDay() error = %v", err)
	}
	if source.invalidated != 0 {
		t.Errorf("invalidated = %d after plain request, want 0", source.invalidated)
	}

	if _, err := svc.ComputeDay(context.Background(), "2024-12-12", ComputeOptions{Refresh: true}); err != nil {
		t.Fatalf("ComputeDay(refresh) error = %v", err)
	}
	if source.invalidated != 1 {
		t.Errorf("invalidated = %d after refresh, want 1", source.invalidated)
	}
}
