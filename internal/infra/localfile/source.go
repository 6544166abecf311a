// Package localfile reads a profile and treatments export from disk.
package localfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
)

const (
	ProfileFile    = "profile.json"
	TreatmentsFile = "treatments.json"
)

var _ domain.NightscoutRepository = (*Source)(nil)

// Source serves profile.json and treatments.json from a directory. Both files
// hold a JSON array; treatments may be a MongoDB extended JSON export.
type Source struct {
	dir string
}

func NewSource(dir string) *Source {
	return &Source{dir: dir}
}

func (s *Source) GetProfiles(ctx context.Context) ([]domain.Profile, error) {
	var profiles []domain.Profile
	if err := s.readJSON(ProfileFile, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetTreatments returns the treatments dated in [from, to) in file order.
// Records that are not JSON objects are skipped; undated ones never match.
func (s *Source) GetTreatments(ctx context.Context, from, to time.Time) ([]domain.Treatment, error) {
	var raw []json.RawMessage
	if err := s.readJSON(TreatmentsFile, &raw); err != nil {
		return nil, err
	}

	start, end := from.UnixMilli(), to.UnixMilli()
	treatments := make([]domain.Treatment, 0, len(raw))
	skipped := 0
	for i, msg := range raw {
		var t domain.Treatment
		if err := json.Unmarshal(msg, &t); err != nil {
			skipped++
			slog.DebugContext(ctx, "skipping malformed treatment",
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			continue
		}
		ms, ok := t.Date.Millis()
		if !ok || ms < start || ms >= end {
			continue
		}
		treatments = append(treatments, t)
	}

	if skipped > 0 {
		slog.WarnContext(ctx, "skipped malformed treatments",
			slog.String("file", filepath.Join(s.dir, TreatmentsFile)),
			slog.Int("count", skipped),
		)
	}

	return treatments, nil
}

func (s *Source) readJSON(name string, v any) error {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
