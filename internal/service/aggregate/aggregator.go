package aggregate

import (
	"time"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
)

type Result struct {
	Date             string
	UTCOffsetMinutes int
	Window           DayWindow
	NoData           bool
	TreatmentCount   int

	Schedule      Schedule
	DefaultHourly HourlyVector
	Hourly        HourlyVector
	Boluses       []float64
	Adjustments   []Adjustment
	Ignored       int

	TotalBasal float64
	TotalBolus float64
	TotalDose  float64
}

// Totals returns the basal total and the total daily dose.
func (r *Result) Totals() (basal, total float64) {
	return r.TotalBasal, r.TotalDose
}

func (r *Result) ToDailyDose(computedAt time.Time) *domain.DailyDose {
	dose := &domain.DailyDose{
		Date:             r.Date,
		UTCOffsetMinutes: r.UTCOffsetMinutes,
		WindowStart:      r.Window.Start(),
		WindowEnd:        r.Window.End(),
		NoData:           r.NoData,
		Boluses:          append([]float64{}, r.Boluses...),
		TotalBasal:       r.TotalBasal,
		TotalBolus:       r.TotalBolus,
		TotalDose:        r.TotalDose,
		TreatmentCount:   r.TreatmentCount,
		ComputedAt:       computedAt.UTC(),
	}
	if !r.NoData {
		dose.HourlyBasal = append([]float64{}, r.Hourly[:]...)
	}
	return dose
}

type Aggregator struct {
	scheduleName string
}

type Option func(*Aggregator)

// WithScheduleName selects the basal schedule in the profile store.
// Without it the profile's defaultProfile is used.
func WithScheduleName(name string) Option {
	return func(a *Aggregator) {
		a.scheduleName = name
	}
}

func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) ScheduleName() string {
	return a.scheduleName
}

// Calculate computes the insulin delivered on the local calendar day date
// using the most recent profile version in profiles.
//
// A day without treatments yields a zero Result with NoData set; the basal
// schedule is not consulted in that case.
func (a *Aggregator) Calculate(profiles []domain.Profile, treatments []domain.Treatment, date string) (*Result, error) {
	profile, err := domain.LatestProfile(profiles)
	if err != nil {
		return nil, err
	}

	offsetMinutes, err := profile.OffsetMinutes()
	if err != nil {
		return nil, err
	}

	window, err := ResolveDayWindow(date, offsetMinutes)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Date:             date,
		UTCOffsetMinutes: offsetMinutes,
		Window:           window,
		Boluses:          make([]float64, 0),
	}

	relevant := window.Filter(treatments)
	result.TreatmentCount = len(relevant)
	if len(relevant) == 0 {
		result.NoData = true
		return result, nil
	}

	basal, err := profile.BasalSchedule(a.scheduleName)
	if err != nil {
		return nil, err
	}

	offsetSeconds := offsetMinutes * secondsPerMinute
	schedule, err := NormalizeSchedule(basal, offsetSeconds)
	if err != nil {
		return nil, err
	}

	breakdown := Reconcile(schedule, relevant, offsetSeconds)

	result.Schedule = schedule
	result.DefaultHourly = DefaultHourly(schedule)
	result.Hourly = breakdown.Hourly
	result.Boluses = breakdown.Boluses
	result.Adjustments = breakdown.Adjustments
	result.Ignored = breakdown.Ignored
	result.TotalBasal = breakdown.Hourly.Sum()
	result.TotalBolus = breakdown.TotalBolus
	result.TotalDose = result.TotalBasal + result.TotalBolus

	return result, nil
}

// CalculateDailyDose is a shorthand for NewAggregator(opts...).Calculate that
// only returns the basal total and the total daily dose.
func CalculateDailyDose(profiles []domain.Profile, treatments []domain.Treatment, date string, opts ...Option) (basal, total float64, err error) {
	result, err := NewAggregator(opts...).Calculate(profiles, treatments, date)
	if err != nil {
		return 0, 0, err
	}
	basal, total = result.Totals()
	return basal, total, nil
}
