package aggregate

import (
	"time"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400
	millisPerSecond  = 1000
	millisPerHour    = 3_600_000
	millisPerDay     = 86_400_000
	hoursPerDay      = 24
)

// DayWindow is the half-open UTC interval [StartMillis, EndMillis) covering
// one local calendar day.
type DayWindow struct {
	Date        string
	StartMillis int64
	EndMillis   int64
}

// ResolveDayWindow converts a local calendar date (YYYY-MM-DD) into its UTC
// millisecond window. offsetMinutes is local minus UTC, so local midnight is
// reached offsetMinutes before the same wall-clock time in UTC.
func ResolveDayWindow(date string, offsetMinutes int) (DayWindow, error) {
	day, err := domain.ParseDate(date)
	if err != nil {
		return DayWindow{}, err
	}

	start := day.UnixMilli() - int64(offsetMinutes)*secondsPerMinute*millisPerSecond

	return DayWindow{
		Date:        date,
		StartMillis: start,
		EndMillis:   start + millisPerDay,
	}, nil
}

func (w DayWindow) Contains(millis int64) bool {
	return w.StartMillis <= millis && millis < w.EndMillis
}

func (w DayWindow) Start() time.Time {
	return time.UnixMilli(w.StartMillis).UTC()
}

func (w DayWindow) End() time.Time {
	return time.UnixMilli(w.EndMillis).UTC()
}

// Filter returns the treatments whose timestamp falls inside the window, in
// input order. Treatments without a valid timestamp are dropped.
func (w DayWindow) Filter(treatments []domain.Treatment) []domain.Treatment {
	relevant := make([]domain.Treatment, 0, len(treatments))
	for _, t := range treatments {
		ms, ok := t.Date.Millis()
		if !ok || !w.Contains(ms) {
			continue
		}
		relevant = append(relevant, t)
	}
	return relevant
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, m int64) int64 {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
