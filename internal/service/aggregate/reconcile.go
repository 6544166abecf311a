package aggregate

import "github.com/KasumiMercury/nightscout-daily-dose/internal/domain"

// HourlyVector holds basal units delivered per hour slot, indexed by hour of day.
type HourlyVector [hoursPerDay]float64

func (v HourlyVector) Sum() float64 {
	sum := 0.0
	for _, units := range v {
		sum += units
	}
	return sum
}

// Adjustment records how one temporary basal changed its hour slot.
type Adjustment struct {
	TimestampMillis  int64
	TimeOfDaySeconds int
	Hour             int
	Rate             float64
	DefaultRate      float64
	DurationMillis   int64
	Delta            float64
}

type Breakdown struct {
	Hourly      HourlyVector
	Boluses     []float64
	TotalBolus  float64
	Adjustments []Adjustment
	Ignored     int
}

// DefaultHourly samples the schedule at the start of every hour.
func DefaultHourly(s Schedule) HourlyVector {
	var hourly HourlyVector
	for hour := range hoursPerDay {
		hourly[hour] = s.RateAt(hour * secondsPerHour)
	}
	return hourly
}

// EventTimeOfDay maps an event timestamp to seconds since midnight after
// adding offsetSeconds. The offset is added here while the day window
// subtracts it; both sides must stay as they are for results to match
// previously reported totals.
func EventTimeOfDay(timestampMillis int64, offsetSeconds int) int {
	seconds := floorDiv(timestampMillis, millisPerSecond) + int64(offsetSeconds)
	return int(floorMod(seconds, secondsPerDay))
}

// Reconcile overlays treatments on the default hourly vector of s.
//
// A temporary basal adds (rate - scheduled rate) * duration to the hour slot in
// which it starts, even when it runs past the end of that hour. A bolus is
// accumulated separately. Anything else, including treatments without a valid
// timestamp, is counted as ignored.
func Reconcile(s Schedule, treatments []domain.Treatment, offsetSeconds int) Breakdown {
	b := Breakdown{
		Hourly:  DefaultHourly(s),
		Boluses: make([]float64, 0),
	}

	for _, t := range treatments {
		ms, ok := t.Date.Millis()
		if !ok {
			b.Ignored++
			continue
		}

		timeOfDay := EventTimeOfDay(ms, offsetSeconds)
		hour := timeOfDay / secondsPerHour

		switch {
		case t.IsTempBasal():
			rate := t.BasalRate()
			defaultRate := s.RateAt(timeOfDay)
			delta := (rate - defaultRate) * (float64(t.DurationInMilliseconds) / millisPerHour)
			b.Hourly[hour] += delta
			b.Adjustments = append(b.Adjustments, Adjustment{
				TimestampMillis:  ms,
				TimeOfDaySeconds: timeOfDay,
				Hour:             hour,
				Rate:             rate,
				DefaultRate:      defaultRate,
				DurationMillis:   t.DurationInMilliseconds,
				Delta:            delta,
			})
		case t.Insulin > 0:
			b.TotalBolus += t.Insulin
			b.Boluses = append(b.Boluses, t.Insulin)
		default:
			b.Ignored++
		}
	}

	return b
}
