package nightscout

import (
	"context"
	"log/slog"
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
)

const profilesCacheKey = "profiles"

var _ domain.NightscoutRepository = (*CachedRepository)(nil)

// CachedRepository keeps the profile list of the wrapped repository in memory
// for a fixed time. Treatments are always fetched.
type CachedRepository struct {
	next     domain.NightscoutRepository
	profiles *otter.Cache[string, []domain.Profile]
}

func NewCachedRepository(next domain.NightscoutRepository, ttl time.Duration) *CachedRepository {
	return &CachedRepository{
		next: next,
		profiles: otter.Must(&otter.Options[string, []domain.Profile]{
			MaximumSize:      1,
			ExpiryCalculator: otter.ExpiryWriting[string, []domain.Profile](ttl),
		}),
	}
}

func (r *CachedRepository) GetProfiles(ctx context.Context) ([]domain.Profile, error) {
	if profiles, ok := r.profiles.GetIfPresent(profilesCacheKey); ok {
		slog.DebugContext(ctx, "profile cache hit")
		return profiles, nil
	}

	profiles, err := r.next.GetProfiles(ctx)
	if err != nil {
		return nil, err
	}
	if len(profiles) > 0 {
		r.profiles.Set(profilesCacheKey, profiles)
	}
	return profiles, nil
}

func (r *CachedRepository) GetTreatments(ctx context.Context, from, to time.Time) ([]domain.Treatment, error) {
	return r.next.GetTreatments(ctx, from, to)
}

// InvalidateProfiles drops the cached profile list.
func (r *CachedRepository) InvalidateProfiles() {
	r.profiles.Invalidate(profilesCacheKey)
}
