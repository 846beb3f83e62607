package usecase

import (
	"context"
	"fmt"

	"github.com/HeXi037/cross-sport-tracker/internal/domain/leaderboard"
	"github.com/HeXi037/cross-sport-tracker/internal/platform/cache"
)

type LeaderboardService struct {
	reader ReferenceReader
	cache  *cache.Store
}

func NewLeaderboardService(reader ReferenceReader, store *cache.Store) *LeaderboardService {
	return &LeaderboardService{
		reader: reader,
		cache:  store,
	}
}

func (s *LeaderboardService) ListBySport(ctx context.Context, sportID string) ([]leaderboard.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.ListBySport")
	defer span.End()

	sportID = normalizeSportID(sportID)
	if sportID == "" {
		return nil, fmt.Errorf("%w: sport id is required", ErrInvalidInput)
	}

	value, err := s.cache.GetOrLoad(ctx, "leaderboard:"+sportID, func(ctx context.Context) (any, error) {
		entries, err := s.reader.ListLeaderboard(ctx, sportID)
		if err != nil {
			return nil, fmt.Errorf("list leaderboard sport=%s: %w", sportID, err)
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]leaderboard.Entry), nil
}
