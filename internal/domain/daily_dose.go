package domain

import "time"

const DateLayout = "2006-01-02"

// DailyDose is the persisted summary of one calendar day.
type DailyDose struct {
	Date             string    `json:"date"`
	UTCOffsetMinutes int       `json:"utc_offset_minutes"`
	WindowStart      time.Time `json:"window_start"`
	WindowEnd        time.Time `json:"window_end"`
	NoData           bool      `json:"no_data"`
	HourlyBasal      []float64 `json:"hourly_basal"`
	Boluses          []float64 `json:"boluses"`
	TotalBasal       float64   `json:"total_basal"`
	TotalBolus       float64   `json:"total_bolus"`
	TotalDose        float64   `json:"total_dose"`
	TreatmentCount   int       `json:"treatment_count"`
	ComputedAt       time.Time `json:"computed_at"`
}

func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
