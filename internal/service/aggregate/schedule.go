package aggregate

import (
	"cmp"
	"slices"
	"sort"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
)

type ScheduleEntry struct {
	TimeAsSeconds int
	Value         float64
	Synthetic     bool // midnight carry-over added during normalization
}

// Schedule is a basal schedule sorted by TimeAsSeconds. Entries sharing a
// start time keep their insertion order.
type Schedule []ScheduleEntry

// NormalizeSchedule rotates a local-time basal schedule by offsetSeconds and
// closes it with a synthetic entry at 0 carrying the value of the last input
// entry, so every time of day resolves to a rate.
//
// When a rotated entry already sits at 0 the synthetic entry sorts after it
// and wins lookups at that time.
func NormalizeSchedule(basal []domain.BasalEntry, offsetSeconds int) (Schedule, error) {
	if len(basal) == 0 {
		return nil, domain.NewMissingFieldError("basal")
	}

	schedule := make(Schedule, 0, len(basal)+1)
	for _, entry := range basal {
		rotated := floorMod(int64(entry.TimeAsSeconds-offsetSeconds+secondsPerDay), secondsPerDay)
		schedule = append(schedule, ScheduleEntry{
			TimeAsSeconds: int(rotated),
			Value:         entry.Value,
		})
	}

	schedule = append(schedule, ScheduleEntry{
		TimeAsSeconds: 0,
		Value:         schedule[len(schedule)-1].Value,
		Synthetic:     true,
	})

	slices.SortStableFunc(schedule, func(a, b ScheduleEntry) int {
		return cmp.Compare(a.TimeAsSeconds, b.TimeAsSeconds)
	})

	return schedule, nil
}

// RateAt returns the value of the latest entry starting at or before seconds.
// Among entries with the same start time the last one in sequence wins, the
// same answer a reverse linear scan gives. It returns 0 when no entry starts
// at or before seconds, which cannot happen for a normalized schedule.
func (s Schedule) RateAt(seconds int) float64 {
	i := sort.Search(len(s), func(i int) bool {
		return s[i].TimeAsSeconds > seconds
	})
	if i == 0 {
		return 0
	}
	return s[i-1].Value
}

// Segment is one row of the schedule table: Value applies from StartHour:00
// through EndHour:59.
type Segment struct {
	StartHour int
	EndHour   int
	Value     float64
}

// Segments lists the schedule as hour ranges. A duplicate start time yields a
// segment ending before it starts, which is reported as is.
func (s Schedule) Segments() []Segment {
	segments := make([]Segment, 0, len(s))
	for i, entry := range s {
		end := hoursPerDay - 1
		if i+1 < len(s) {
			end = s[i+1].TimeAsSeconds/secondsPerHour - 1
		}
		segments = append(segments, Segment{
			StartHour: entry.TimeAsSeconds / secondsPerHour,
			EndHour:   end,
			Value:     entry.Value,
		})
	}
	return segments
}
