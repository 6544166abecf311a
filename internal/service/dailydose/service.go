// Package dailydose fetches Nightscout data, runs the daily dose aggregation
// and persists the results.
package dailydose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/observability/metrics"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/observability/tracing"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/service/aggregate"
)

const (
	defaultMaxRangeDays = 31
	defaultConcurrency  = 4

	outcomeOK     = "ok"
	outcomeNoData = "no_data"
	outcomeError  = "error"
)

type Config struct {
	MaxRangeDays int
	Concurrency  int
}

type ComputeOptions struct {
	// Refresh skips the cache lookup and drops cached profiles; the fresh
	// result still replaces the cached one.
	Refresh bool
	RunID   string
}

// DayResult is one computed day. Result carries the full breakdown and is nil
// when Dose was served from the cache.
type DayResult struct {
	Dose   *domain.DailyDose
	Result *aggregate.Result
	Cached bool
}

type CalculateRequest struct {
	Profiles     []domain.Profile
	Treatments   []domain.Treatment
	Date         string
	ScheduleName string
}

// profileInvalidator is implemented by sources that cache profiles.
type profileInvalidator interface {
	InvalidateProfiles()
}

type Service struct {
	source      domain.NightscoutRepository
	cache       domain.DailyDoseRepository
	history     domain.DoseHistoryRepository
	recorder    domain.DoseRecorder
	aggregator  *aggregate.Aggregator
	doseMetrics *metrics.DoseMetrics
	cfg         Config
	now         func() time.Time
}

// NewService wires the collaborators. cache, history, recorder and doseMetrics
// may be nil.
func NewService(
	source domain.NightscoutRepository,
	cache domain.DailyDoseRepository,
	history domain.DoseHistoryRepository,
	recorder domain.DoseRecorder,
	aggregator *aggregate.Aggregator,
	doseMetrics *metrics.DoseMetrics,
	cfg Config,
) *Service {
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = defaultMaxRangeDays
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if aggregator == nil {
		aggregator = aggregate.NewAggregator()
	}

	return &Service{
		source:      source,
		cache:       cache,
		history:     history,
		recorder:    recorder,
		aggregator:  aggregator,
		doseMetrics: doseMetrics,
		cfg:         cfg,
		now:         time.Now,
	}
}

// ComputeDay returns the insulin delivered on the local calendar day date.
func (s *Service) ComputeDay(ctx context.Context, date string, opts ComputeOptions) (res *DayResult, err error) {
	if _, err := domain.ParseDate(date); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartComputeDaySpan(ctx, date)
	defer span.End()

	start := s.now()
	defer func() {
		outcome := outcomeOK
		switch {
		case err != nil:
			outcome = outcomeError
		case res.Dose.NoData:
			outcome = outcomeNoData
		}

		if s.doseMetrics != nil && (res == nil || !res.Cached) {
			s.doseMetrics.RecordDayComputed(ctx, outcome)
			s.doseMetrics.RecordComputationDuration(ctx, outcome, s.now().Sub(start))
		}

		if res != nil {
			tracing.RecordComputeDayResult(span, res.Cached, res.Dose.NoData, res.Dose.TotalBasal, res.Dose.TotalDose, nil)
		} else {
			tracing.RecordComputeDayResult(span, false, false, 0, 0, err)
		}
	}()

	if opts.Refresh {
		if inv, ok := s.source.(profileInvalidator); ok {
			inv.InvalidateProfiles()
		}
	} else if dose, ok := s.lookupCache(ctx, date); ok {
		return &DayResult{Dose: dose, Cached: true}, nil
	}

	result, err := s.fetchAndCalculate(ctx, date)
	if err != nil {
		slog.ErrorContext(ctx, "failed to compute daily dose",
			slog.String("date", date),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	dose := result.ToDailyDose(s.now())
	s.persist(ctx, opts.RunID, result.Window, dose)

	slog.InfoContext(ctx, "computed daily dose",
		slog.String("date", date),
		slog.Bool("no_data", dose.NoData),
		slog.Int("treatment_count", dose.TreatmentCount),
		slog.Float64("total_basal", dose.TotalBasal),
		slog.Float64("total_bolus", dose.TotalBolus),
		slog.Float64("total_dose", dose.TotalDose),
	)

	return &DayResult{Dose: dose, Result: result}, nil
}

func (s *Service) fetchAndCalculate(ctx context.Context, date string) (*aggregate.Result, error) {
	profiles, err := s.source.GetProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profiles: %w", err)
	}

	profile, err := domain.LatestProfile(profiles)
	if err != nil {
		return nil, err
	}
	offset, err := profile.OffsetMinutes()
	if err != nil {
		return nil, err
	}
	window, err := aggregate.ResolveDayWindow(date, offset)
	if err != nil {
		return nil, err
	}

	treatments, err := s.source.GetTreatments(ctx, window.Start(), window.End())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch treatments: %w", err)
	}

	slog.DebugContext(ctx, "fetched treatments for day",
		slog.String("date", date),
		slog.Time("window_start", window.Start()),
		slog.Time("window_end", window.End()),
		slog.Int("count", len(treatments)),
	)

	return s.aggregator.Calculate(profiles, treatments, date)
}

func (s *Service) lookupCache(ctx context.Context, date string) (*domain.DailyDose, bool) {
	if s.cache == nil {
		return nil, false
	}

	dose, err := s.cache.GetDailyDose(ctx, date)
	hit := err == nil
	if s.doseMetrics != nil {
		s.doseMetrics.RecordCacheLookup(ctx, hit)
	}

	if err != nil && !errors.Is(err, domain.ErrDoseNotFound) {
		slog.WarnContext(ctx, "failed to read daily dose cache",
			slog.String("date", date),
			slog.String("error", err.Error()),
		)
	}
	return dose, hit
}

// persist stores dose in every configured sink. Sink failures are logged and
// do not fail the computation. A day whose window has not closed yet is not
// cached.
func (s *Service) persist(ctx context.Context, runID string, window aggregate.DayWindow, dose *domain.DailyDose) {
	if s.cache != nil {
		if s.now().Before(window.End()) {
			slog.DebugContext(ctx, "not caching day in progress", slog.String("date", dose.Date))
		} else if err := s.cache.SaveDailyDose(ctx, dose); err != nil {
			slog.WarnContext(ctx, "failed to cache daily dose",
				slog.String("date", dose.Date),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.history != nil {
		if err := s.history.UpsertDailyDose(ctx, dose); err != nil {
			slog.WarnContext(ctx, "failed to store daily dose history",
				slog.String("date", dose.Date),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.recorder != nil {
		if err := s.recorder.RecordDailyDose(ctx, runID, dose); err != nil {
			slog.WarnContext(ctx, "failed to record daily dose",
				slog.String("date", dose.Date),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.doseMetrics != nil && !dose.NoData {
		s.doseMetrics.RecordTotalDose(ctx, dose.TotalDose)
	}
}

// ComputeRange computes every day from from to to inclusive, at most
// Config.Concurrency days at a time. Results are ordered by date. The first
// failing day cancels the rest.
func (s *Service) ComputeRange(ctx context.Context, from, to string, opts ComputeOptions) ([]*DayResult, error) {
	dates, err := s.expandRange(from, to)
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.StartComputeRangeSpan(ctx, from, to, len(dates))
	defer span.End()

	results := make([]*DayResult, len(dates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, date := range dates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.ComputeDay(gctx, date, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", date, err)
			}
			results[i] = res
			return nil
		})
	}

	err = g.Wait()
	tracing.RecordError(span, err)
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		if err := s.recorder.Flush(ctx); err != nil {
			slog.WarnContext(ctx, "failed to flush dose recorder",
				slog.String("error", err.Error()),
			)
		}
	}

	return results, nil
}

func (s *Service) expandRange(from, to string) ([]string, error) {
	start, err := domain.ParseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := domain.ParseDate(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s is after %s", domain.ErrInvalidRange, from, to)
	}

	days := int(end.Sub(start)/(24*time.Hour)) + 1
	if days > s.cfg.MaxRangeDays {
		return nil, fmt.Errorf("%w: %d days requested, at most %d allowed", domain.ErrInvalidRange, days, s.cfg.MaxRangeDays)
	}

	dates := make([]string, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(domain.DateLayout))
	}
	return dates, nil
}

// Calculate runs the aggregation over caller-supplied data without fetching
// or persisting anything.
func (s *Service) Calculate(ctx context.Context, req CalculateRequest) (*aggregate.Result, error) {
	aggregator := s.aggregator
	if req.ScheduleName != "" {
		aggregator = aggregate.NewAggregator(aggregate.WithScheduleName(req.ScheduleName))
	}

	result, err := aggregator.Calculate(req.Profiles, req.Treatments, req.Date)
	if err != nil {
		slog.WarnContext(ctx, "calculation rejected",
			slog.String("date", req.Date),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return result, nil
}

// History returns the stored summaries for from..to inclusive.
func (s *Service) History(ctx context.Context, from, to string) ([]*domain.DailyDose, error) {
	if s.history == nil {
		return nil, domain.ErrHistoryOff
	}

	start, err := domain.ParseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := domain.ParseDate(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s is after %s", domain.ErrInvalidRange, from, to)
	}

	return s.history.ListDailyDoses(ctx, from, to)
}
