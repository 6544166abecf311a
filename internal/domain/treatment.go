package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// NoRate is the rate reported for treatments that carry no temporary basal rate.
const NoRate = -1.0

// Timestamp is a millisecond epoch time as found in Nightscout treatments.
// It decodes both the Mongo extended form {"$numberLong":"1733961600000"} and a
// bare JSON number. Anything else decodes to an invalid timestamp instead of an
// error so that one bad record does not reject a whole export.
type Timestamp struct {
	millis int64
	valid  bool
}

func NewTimestamp(millis int64) Timestamp {
	return Timestamp{millis: millis, valid: true}
}

func TimestampFromTime(t time.Time) Timestamp {
	return NewTimestamp(t.UnixMilli())
}

func (ts Timestamp) Millis() (int64, bool) {
	return ts.millis, ts.valid
}

func (ts Timestamp) Valid() bool {
	return ts.valid
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	*ts = Timestamp{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '{' {
		var wrapped struct {
			NumberLong *string `json:"$numberLong"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil || wrapped.NumberLong == nil {
			return nil
		}
		if v, err := strconv.ParseInt(*wrapped.NumberLong, 10, 64); err == nil {
			*ts = NewTimestamp(v)
		}
		return nil
	}

	if v, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*ts = NewTimestamp(v)
		return nil
	}
	if f, err := strconv.ParseFloat(string(data), 64); err == nil && f == float64(int64(f)) {
		*ts = NewTimestamp(int64(f))
	}
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(ts.millis, 10)), nil
}

// ObjectID accepts both a plain string id and the Mongo extended {"$oid":"..."} form.
type ObjectID string

func (id *ObjectID) UnmarshalJSON(data []byte) error {
	*id = ""

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '{' {
		var wrapped struct {
			OID string `json:"$oid"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil
		}
		*id = ObjectID(wrapped.OID)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	*id = ObjectID(s)
	return nil
}

// Treatment is a discrete Nightscout treatment record: either a bolus
// (Insulin > 0) or a temporary basal override (Rate >= 0 for DurationInMilliseconds).
type Treatment struct {
	ID                     ObjectID  `json:"_id,omitempty"`
	EventType              string    `json:"eventType,omitempty"`
	Date                   Timestamp `json:"date"`
	DurationInMilliseconds int64     `json:"durationInMilliseconds,omitempty"`
	Insulin                float64   `json:"insulin,omitempty"`
	Carbs                  float64   `json:"carbs,omitempty"`
	Rate                   *float64  `json:"rate,omitempty"`
	EnteredBy              string    `json:"enteredBy,omitempty"`
}

// UnmarshalJSON accepts durationInMilliseconds as an integer, a float or a
// numeric string. Fractional milliseconds are truncated and anything else
// decodes to 0.
func (t *Treatment) UnmarshalJSON(data []byte) error {
	type plain Treatment
	aux := struct {
		*plain
		DurationInMilliseconds json.RawMessage `json:"durationInMilliseconds"`
	}{plain: (*plain)(t)}

	*t = Treatment{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.DurationInMilliseconds = lenientMillis(aux.DurationInMilliseconds)
	return nil
}

func lenientMillis(data json.RawMessage) int64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0
		}
		raw = strings.TrimSpace(s)
	}

	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}

// BasalRate returns the temporary basal rate, or NoRate when the treatment has none.
func (t *Treatment) BasalRate() float64 {
	if t.Rate == nil {
		return NoRate
	}
	return *t.Rate
}

func (t *Treatment) IsTempBasal() bool {
	return t.BasalRate() >= 0
}

func (t *Treatment) IsBolus() bool {
	return !t.IsTempBasal() && t.Insulin > 0
}

// Time returns the treatment time, or the zero time when the timestamp is invalid.
func (t *Treatment) Time() time.Time {
	ms, ok := t.Date.Millis()
	if !ok {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
