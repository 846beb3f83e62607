package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/HeXi037/cross-sport-tracker/internal/domain/player"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/sport"
	"github.com/HeXi037/cross-sport-tracker/internal/platform/cache"
)

// ReferenceService serves the small, slow-moving collections the feed
// decorates rows with. Reads go through a TTL cache so repeated page
// loads do not hammer the upstream service.
type ReferenceService struct {
	reader ReferenceReader
	cache  *cache.Store
}

// Overview bundles the reference data a fresh page load needs.
type Overview struct {
	Players []player.Player
	Sports  []sport.Sport
}

func NewReferenceService(reader ReferenceReader, store *cache.Store) *ReferenceService {
	return &ReferenceService{
		reader: reader,
		cache:  store,
	}
}

func (s *ReferenceService) ListPlayers(ctx context.Context) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReferenceService.ListPlayers")
	defer span.End()

	value, err := s.cache.GetOrLoad(ctx, "reference:players", func(ctx context.Context) (any, error) {
		items, err := s.reader.ListPlayers(ctx)
		if err != nil {
			return nil, fmt.Errorf("list players: %w", err)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]player.Player), nil
}

func (s *ReferenceService) ListSports(ctx context.Context) ([]sport.Sport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReferenceService.ListSports")
	defer span.End()

	value, err := s.cache.GetOrLoad(ctx, "reference:sports", func(ctx context.Context) (any, error) {
		items, err := s.reader.ListSports(ctx)
		if err != nil {
			return nil, fmt.Errorf("list sports: %w", err)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]sport.Sport), nil
}

// Overview fetches players and sports concurrently; either failure
// fails the whole call since a page load needs both.
func (s *ReferenceService) Overview(ctx context.Context) (Overview, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReferenceService.Overview")
	defer span.End()

	var out Overview
	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		players, err := s.ListPlayers(ctx)
		if err != nil {
			return err
		}
		out.Players = players
		return nil
	})
	p.Go(func(ctx context.Context) error {
		sports, err := s.ListSports(ctx)
		if err != nil {
			return err
		}
		out.Sports = sports
		return nil
	})
	if err := p.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}

// InvalidateAll drops every cached reference collection.
func (s *ReferenceService) InvalidateAll(ctx context.Context) {
	s.cache.DeletePrefix(ctx, "reference:")
}

func normalizeSportID(sportID string) string {
	return strings.ToLower(strings.TrimSpace(sportID))
}
