package aggregate

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
)

const testScheduleName = "NR Profil"

func testProfiles(offsetMinutes int, basal ...domain.BasalEntry) []domain.Profile {
	return []domain.Profile{{
		DefaultProfile: testScheduleName,
		UTCOffset:      &offsetMinutes,
		Store: map[string]domain.ProfileStore{
			testScheduleName: {Basal: basal},
		},
	}}
}

func at(millis int64) domain.Timestamp {
	return domain.NewTimestamp(millis)
}

func TestAggregator_FlatScheduleWithBolus(t *testing.T) {
	profiles := testProfiles(0, domain.BasalEntry{TimeAsSeconds: 0, Value: 1.0})
	bolusAt := time.Date(2024, 12, 12, 0, 30, 0, 0, time.UTC)

	result, err := NewAggregator().Calculate(profiles, []domain.Treatment{
		{Date: domain.TimestampFromTime(bolusAt), Insulin: 5.0},
	}, "2024-12-12")
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	for h, v := range result.Hourly {
		if v != 1.0 {
			t.Errorf("hourly[%d] = %v, want 1.0", h, v)
		}
	}
	if result.TotalBasal != 24.0 || result.TotalBolus != 5.0 || result.TotalDose != 29.0 {
		t.Errorf("totals = (%v, %v, %v), want (24, 5, 29)", result.TotalBasal, result.TotalBolus, result.TotalDose)
	}
	if result.NoData {
		t.Error("NoData = true, want false")
	}
}

func TestAggregator_HalfHourOverride(t *testing.T) {
	profiles := testProfiles(0, domain.BasalEntry{TimeAsSeconds: 0, Value: 1.0})
	overrideAt := time.Date(2024, 12, 12, 10, 0, 0, 0, time.UTC)

	result, err := NewAggregator().Calculate(profiles, []domain.Treatment{
		{Date: domain.TimestampFromTime(overrideAt), Rate: rate(2.0), DurationInMilliseconds: 1_800_000},
	}, "2024-12-12")
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	for h, v := range result.Hourly {
		want := 1.0
		if h == 10 {
			want = 1.5
		}
		if v != want {
			t.Errorf("hourly[%d] = %v, want %v", h, v, want)
		}
	}
	// 23 hours at 1.0 plus 1.5 in hour 10.
	if result.TotalBasal != 24.5 {
		t.Errorf("TotalBasal = %v, want 24.5", result.TotalBasal)
	}
	if result.TotalDose != 24.5 {
		t.Errorf("TotalDose = %v, want 24.5", result.TotalDose)
	}
}

func TestAggregator_OffsetShiftsWindowNotAttribution(t *testing.T) {
	flat := domain.BasalEntry{TimeAsSeconds: 0, Value: 1.0}

	utc, err := ResolveDayWindow("2024-12-12", 0)
	if err != nil {
		t.Fatalf("ResolveDayWindow() error = %v", err)
	}
	west, err := ResolveDayWindow("2024-12-12", -300)
	if err != nil {
		t.Fatalf("ResolveDayWindow() error = %v", err)
	}
	if shift := west.StartMillis - utc.StartMillis; shift != 300*60*1000 {
		t.Errorf("start shift = %d, want %d", shift, 300*60*1000)
	}
	if shift := west.EndMillis - utc.EndMillis; shift != 300*60*1000 {
		t.Errorf("end shift = %d, want %d", shift, 300*60*1000)
	}

	s, err := NormalizeSchedule([]domain.BasalEntry{{TimeAsSeconds: 2 * 3600, Value: 0.9}}, -300*60)
	if err != nil {
		t.Fatalf("NormalizeSchedule() error = %v", err)
	}
	if s[1].TimeAsSeconds != 7*3600 {
		t.Errorf("rotated entry at %d, want %d", s[1].TimeAsSeconds, 7*3600)
	}

	treatments := []domain.Treatment{{Date: at(west.StartMillis + 3_600_000), Insulin: 1.0}}
	result, err := NewAggregator().Calculate(testProfiles(-300, flat), treatments, "2024-12-12")
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	for h, v := range result.Hourly {
		if v != 1.0 {
			t.Errorf("hourly[%d] = %v, want 1.0", h, v)
		}
	}
	if result.TotalBasal != 24.0 {
		t.Errorf("TotalBasal = %v, want 24.0", result.TotalBasal)
	}
}

func TestAggregator_NoData(t *testing.T) {
	profiles := testProfiles(60, domain.BasalEntry{TimeAsSeconds: 0, Value: 1.0})
	outside := time.Date(2024, 12, 13, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		treatments []domain.Treatment
	}{
		{name: "nil", treatments: nil},
		{name: "outside window", treatments: []domain.Treatment{{Date: domain.TimestampFromTime(outside), Insulin: 4}}},
		{name: "undated only", treatments: []domain.Treatment{{Insulin: 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewAggregator().Calculate(profiles, tt.treatments, "2024-12-12")
			if err != nil {
				t.Fatalf("Calculate() error = %v", err)
			}
			if !result.NoData {
				t.Error("NoData = false, want true")
			}
			basal, total := result.Totals()
			if basal != 0 || total != 0 {
				t.Errorf("Totals() = (%v, %v), want (0, 0)", basal, total)
			}
		})
	}
}

func TestAggregator_NoDataSkipsScheduleLookup(t *testing.T) {
	offset := 0
	profiles := []domain.Profile{{UTCOffset: &offset}}

	result, err := NewAggregator().Calculate(profiles, nil, "2024-12-12")
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if !result.NoData {
		t.Error("NoData = false, want true")
	}
}

func TestAggregator_ProfileErrors(t *testing.T) {
	offset := 0
	dated := []domain.Treatment{{Date: at(time.Date(2024, 12, 12, 1, 0, 0, 0, time.UTC).UnixMilli()), Insulin: 1}}

	tests := []struct {
		name     string
		profiles []domain.Profile
		opts     []Option
		date     string
		wantErr  error
	}{
		{name: "no profiles", profiles: nil, date: "2024-12-12", wantErr: domain.ErrMissingField},
		{name: "no offset", profiles: []domain.Profile{{DefaultProfile: "a"}}, date: "2024-12-12", wantErr: domain.ErrMissingField},
		{name: "unknown schedule", profiles: testProfiles(0, domain.BasalEntry{Value: 1}), opts: []Option{WithScheduleName("other")}, date: "2024-12-12", wantErr: domain.ErrMissingField},
		{name: "empty basal", profiles: []domain.Profile{{DefaultProfile: "a", UTCOffset: &offset, Store: map[string]domain.ProfileStore{"a": {}}}}, date: "2024-12-12", wantErr: domain.ErrMissingField},
		{name: "bad date", profiles: testProfiles(0, domain.BasalEntry{Value: 1}), date: "2024-1-2", wantErr: domain.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAggregator(tt.opts...).Calculate(tt.profiles, dated, tt.date)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Calculate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAggregator_Idempotent(t *testing.T) {
	profiles := parityProfiles()
	treatments := parityTreatments()

	b1, t1, err := CalculateDailyDose(profiles, treatments, "2024-12-12", WithScheduleName(testScheduleName))
	if err != nil {
		t.Fatalf("CalculateDailyDose() error = %v", err)
	}
	b2, t2, err := CalculateDailyDose(profiles, treatments, "2024-12-12", WithScheduleName(testScheduleName))
	if err != nil {
		t.Fatalf("CalculateDailyDose() error = %v", err)
	}
	if b1 != b2 || t1 != t2 {
		t.Errorf("results differ: (%v, %v) vs (%v, %v)", b1, t1, b2, t2)
	}
}

func parityProfiles() []domain.Profile {
	return testProfiles(60,
		domain.BasalEntry{Time: "00:00", TimeAsSeconds: 0, Value: 0.8},
		domain.BasalEntry{Time: "06:00", TimeAsSeconds: 21600, Value: 1.2},
		domain.BasalEntry{Time: "12:00", TimeAsSeconds: 43200, Value: 1.0},
		domain.BasalEntry{Time: "22:00", TimeAsSeconds: 79200, Value: 0.6},
	)
}

func parityTreatments() []domain.Treatment {
	base := time.Date(2024, 12, 12, 0, 0, 0, 0, time.UTC).UnixMilli()
	const hour = int64(3_600_000)
	const minute = int64(60_000)

	return []domain.Treatment{
		{Date: at(base - 2*hour), Insulin: 9.0},
		{Date: at(base - hour), Insulin: 3.5},
		{Date: at(base + 2*hour + 15*minute), Rate: rate(0.0), DurationInMilliseconds: 3_600_000},
		{Date: at(base + 7*hour), Rate: rate(2.0), DurationInMilliseconds: 5_400_000},
		{Date: at(base + 11*hour + 30*minute), Insulin: 4.25},
		{Date: at(base + 21*hour + 45*minute), Rate: rate(0.3), DurationInMilliseconds: 1_800_000},
		{Date: at(base + 23*hour - 1), Insulin: 1.0},
		{Date: at(base + 23*hour), Insulin: 7.0},
		{Insulin: 2.0},
	}
}

// Reference values produced by the legacy report for the same data set.
func TestAggregator_ReferenceDay(t *testing.T) {
	result, err := NewAggregator(WithScheduleName(testScheduleName)).Calculate(parityProfiles(), parityTreatments(), "2024-12-12")
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	wantSchedule := Schedule{
		{TimeAsSeconds: 0, Value: 0.6, Synthetic: true},
		{TimeAsSeconds: 18000, Value: 1.2},
		{TimeAsSeconds: 39600, Value: 1.0},
		{TimeAsSeconds: 75600, Value: 0.6},
		{TimeAsSeconds: 82800, Value: 0.8},
	}
	for i := range wantSchedule {
		if result.Schedule[i] != wantSchedule[i] {
			t.Errorf("schedule[%d] = %+v, want %+v", i, result.Schedule[i], wantSchedule[i])
		}
	}

	wantHourly := HourlyVector{
		0.6, 0.6, 0.6, 0.0, 0.6, 1.2, 1.2, 1.2, 2.4, 1.2, 1.2, 1.0,
		1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 0.6, 0.45, 0.8,
	}
	for h := range wantHourly {
		if math.Abs(result.Hourly[h]-wantHourly[h]) > tolerance {
			t.Errorf("hourly[%d] = %v, want %v", h, result.Hourly[h], wantHourly[h])
		}
	}

	if result.TreatmentCount != 6 {
		t.Errorf("TreatmentCount = %d, want 6", result.TreatmentCount)
	}
	if len(result.Boluses) != 3 {
		t.Errorf("Boluses = %v, want 3 entries", result.Boluses)
	}
	if math.Abs(result.TotalBolus-8.75) > tolerance {
		t.Errorf("TotalBolus = %v, want 8.75", result.TotalBolus)
	}
	if math.Abs(result.TotalBasal-22.65) > tolerance {
		t.Errorf("TotalBasal = %v, want 22.65", result.TotalBasal)
	}
	if math.Abs(result.TotalDose-31.4) > tolerance {
		t.Errorf("TotalDose = %v, want 31.4", result.TotalDose)
	}
}

func TestResult_ToDailyDose(t *testing.T) {
	result, err := NewAggregator().Calculate(parityProfiles(), parityTreatments(), "2024-12-12")
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	computedAt := time.Date(2024, 12, 13, 8, 0, 0, 0, time.FixedZone("CET", 3600))
	dose := result.ToDailyDose(computedAt)

	if dose.Date != "2024-12-12" || dose.UTCOffsetMinutes != 60 {
		t.Errorf("dose = %+v, want date 2024-12-12 offset 60", dose)
	}
	if len(dose.HourlyBasal) != 24 {
		t.Errorf("len(HourlyBasal) = %d, want 24", len(dose.HourlyBasal))
	}
	if !dose.WindowStart.Equal(time.Date(2024, 12, 11, 23, 0, 0, 0, time.UTC)) {
		t.Errorf("WindowStart = %v", dose.WindowStart)
	}
	if dose.ComputedAt.Location() != time.UTC || !dose.ComputedAt.Equal(computedAt) {
		t.Errorf("ComputedAt = %v, want %v in UTC", dose.ComputedAt, computedAt)
	}
}
