// Package glucosesync copies Nightscout CGM entries and treatments into a
// time series sink, resuming after the newest stored glucose point.
package glucosesync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/observability/tracing"
)

// Options bounds a sync run. A zero From resumes at the newest glucose point
// in the sink, or at the epoch when the sink is empty. To is inclusive and
// defaults to now.
type Options struct {
	From time.Time
	To   time.Time
}

type Stats struct {
	Since             time.Time
	Until             time.Time
	EntriesRead       int
	EntriesWritten    int
	TreatmentsRead    int
	TreatmentsWritten int
}

type Syncer struct {
	source domain.NightscoutScanner
	sink   domain.GlucoseSink
	now    func() time.Time
}

func NewSyncer(source domain.NightscoutScanner, sink domain.GlucoseSink) *Syncer {
	return &Syncer{
		source: source,
		sink:   sink,
		now:    time.Now,
	}
}

func (s *Syncer) Run(ctx context.Context, opts Options) (*Stats, error) {
	since, err := s.resolveSince(ctx, opts.From)
	if err != nil {
		return nil, err
	}

	until := opts.To
	if until.IsZero() {
		until = s.now()
	}
	if until.Before(since) {
		return nil, fmt.Errorf("%w: sync start %s is after end %s", domain.ErrInvalidRange,
			since.Format(time.RFC3339), until.Format(time.RFC3339))
	}
	// Nightscout is queried with an exclusive upper bound.
	end := until.Add(time.Millisecond)

	ctx, span := tracing.StartGlucoseSyncSpan(ctx, since, until)
	defer span.End()

	stats := &Stats{Since: since, Until: until}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.source.ScanEntries(gctx, since, end, func(page []domain.Entry) error {
			n, err := s.sink.WriteEntries(gctx, page)
			if err != nil {
				return err
			}
			stats.EntriesRead += len(page)
			stats.EntriesWritten += n
			return nil
		})
	})
	g.Go(func() error {
		return s.source.ScanTreatments(gctx, since, end, func(page []domain.Treatment) error {
			n, err := s.sink.WriteTreatments(gctx, page)
			if err != nil {
				return err
			}
			stats.TreatmentsRead += len(page)
			stats.TreatmentsWritten += n
			return nil
		})
	})

	err = g.Wait()
	tracing.RecordError(span, err)
	if err != nil {
		slog.ErrorContext(ctx, "glucose sync failed",
			slog.Time("since", since),
			slog.Time("until", until),
			slog.Int("entries_written", stats.EntriesWritten),
			slog.Int("treatments_written", stats.TreatmentsWritten),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	slog.InfoContext(ctx, "glucose sync finished",
		slog.Time("since", since),
		slog.Time("until", until),
		slog.Int("entries_read", stats.EntriesRead),
		slog.Int("entries_written", stats.EntriesWritten),
		slog.Int("treatments_read", stats.TreatmentsRead),
		slog.Int("treatments_written", stats.TreatmentsWritten),
	)

	return stats, nil
}

func (s *Syncer) resolveSince(ctx context.Context, from time.Time) (time.Time, error) {
	if !from.IsZero() {
		return from, nil
	}

	latest, err := s.sink.LatestGlucoseTime(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if latest.IsZero() {
		slog.InfoContext(ctx, "glucose sink is empty, syncing full history")
		return time.UnixMilli(0).UTC(), nil
	}

	slog.InfoContext(ctx, "resuming glucose sync", slog.Time("latest", latest))
	return latest, nil
}
