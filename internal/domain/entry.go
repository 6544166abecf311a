package domain

import "time"

// Entry is a Nightscout CGM reading. SGV is in mg/dL and is 0 for entries
// that are not sensor glucose values (calibrations, meter readings).
type Entry struct {
	ID         ObjectID  `json:"_id,omitempty"`
	Type       string    `json:"type,omitempty"`
	SGV        float64   `json:"sgv,omitempty"`
	Direction  string    `json:"direction,omitempty"`
	Device     string    `json:"device,omitempty"`
	Date       Timestamp `json:"date"`
	DateString string    `json:"dateString,omitempty"`
}

// Time returns the reading time, or the zero time when the timestamp is invalid.
func (e *Entry) Time() time.Time {
	ms, ok := e.Date.Millis()
	if !ok {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
