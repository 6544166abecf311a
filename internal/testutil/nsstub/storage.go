package nsstub

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
)

// record is a stored document with the date it is filtered and sorted by.
type record struct {
	date  int64
	dated bool
	body  json.RawMessage
}

type Storage struct {
	mu         sync.RWMutex
	profiles   []domain.Profile
	treatments []record
	entries    []record
}

func NewStorage() *Storage {
	return &Storage{}
}

func (s *Storage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = nil
	s.treatments = nil
	s.entries = nil
}

func (s *Storage) AddProfiles(profiles ...domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = append(s.profiles, profiles...)
}

func (s *Storage) AddTreatments(treatments ...domain.Treatment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range treatments {
		s.treatments = append(s.treatments, encode(t.Date, t))
	}
}

func (s *Storage) AddEntries(entries ...domain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.entries = append(s.entries, encode(e.Date, e))
	}
}

// AddRawTreatment stores body verbatim under date, for documents the client
// is expected to reject.
func (s *Storage) AddRawTreatment(date int64, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.treatments = append(s.treatments, record{date: date, dated: true, body: json.RawMessage(body)})
}

// LatestProfiles returns up to limit profiles, newest (last added) first.
func (s *Storage) LatestProfiles(limit int) []domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.profiles)
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TreatmentsInRange returns dated treatments with from <= date < to sorted by
// date, at most limit of them.
func (s *Storage) TreatmentsInRange(from, to int64, limit int) []json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return inRange(s.treatments, from, to, limit)
}

func (s *Storage) EntriesInRange(from, to int64, limit int) []json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return inRange(s.entries, from, to, limit)
}

func encode(date domain.Timestamp, v any) record {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	ms, ok := date.Millis()
	return record{date: ms, dated: ok, body: body}
}

// inRange keeps insertion order among records sharing a millisecond, like a
// Mongo query sorted on date alone.
func inRange(records []record, from, to int64, limit int) []json.RawMessage {
	matched := make([]record, 0)
	for _, r := range records {
		if !r.dated || r.date < from || r.date >= to {
			continue
		}
		matched = append(matched, r)
	}

	slices.SortStableFunc(matched, func(a, b record) int {
		switch {
		case a.date < b.date:
			return -1
		case a.date > b.date:
			return 1
		}
		return 0
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]json.RawMessage, len(matched))
	for i, r := range matched {
		out[i] = r.body
	}
	return out
}
