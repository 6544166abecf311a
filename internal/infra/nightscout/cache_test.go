package nightscout

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
)

func TestCachedRepository_GetProfiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := domain.NewMockNightscoutRepository(ctrl)

	profiles := []domain.Profile{testProfile()}
	next.EXPECT().GetProfiles(gomock.Any()).Return(profiles, nil).Times(1)

	repo := NewCachedRepository(next, time.Hour)

	for range 3 {
		got, err := repo.GetProfiles(context.Background())
		if err != nil {
			t.Fatalf("GetProfiles() error = %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("len(GetProfiles()) = %d, want 1", len(got))
		}
	}
}

func TestCachedRepository_InvalidateProfiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := domain.NewMockNightscoutRepository(ctrl)

	next.EXPECT().GetProfiles(gomock.Any()).Return([]domain.Profile{testProfile()}, nil).Times(2)

	repo := NewCachedRepository(next, time.Hour)

	if _, err := repo.GetProfiles(context.Background()); err != nil {
		t.Fatalf("GetProfiles() error = %v", err)
	}
	repo.InvalidateProfiles()
	if _, err := repo.GetProfiles(context.Background()); err != nil {
		t.Fatalf("GetProfiles() error = %v", err)
	}
}

func TestCachedRepository_ErrorsAreNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := domain.NewMockNightscoutRepository(ctrl)

	gomock.InOrder(
		next.EXPECT().GetProfiles(gomock.Any()).Return(nil, domain.ErrUpstream),
		next.EXPECT().GetProfiles(gomock.Any()).Return([]domain.Profile{testProfile()}, nil),
	)

	repo := NewCachedRepository(next, time.Hour)

	if _, err := repo.GetProfiles(context.Background()); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("GetProfiles() error = %v, want ErrUpstream", err)
	}
	if _, err := repo.GetProfiles(context.Background()); err != nil {
		t.Fatalf("GetProfiles() error = %v", err)
	}
}

func TestCachedRepository_TreatmentsPassThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := domain.NewMockNightscoutRepository(ctrl)

	from := time.Date(2024, 12, 12, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	next.EXPECT().GetTreatments(gomock.Any(), from, to).Return([]domain.Treatment{{Insulin: 1}}, nil).Times(2)

	repo := NewCachedRepository(next, time.Hour)
	for range 2 {
		if _, err := repo.GetTreatments(context.Background(), from, to); err != nil {
			t.Fatalf("GetTreatments() error = %v", err)
		}
	}
}
