package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/HeXi037/cross-sport-tracker/internal/domain/tournament"
)

// TournamentService proxies tournament CRUD to the upstream service,
// validating input before the round trip.
type TournamentService struct {
	writer TournamentWriter
}

func NewTournamentService(writer TournamentWriter) *TournamentService {
	return &TournamentService{writer: writer}
}

func (s *TournamentService) Create(ctx context.Context, t tournament.Tournament) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Create")
	defer span.End()

	if err := validateTournament(t); err != nil {
		return tournament.Tournament{}, err
	}

	created, err := s.writer.CreateTournament(ctx, t)
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("create tournament: %w", err)
	}
	return created, nil
}

func (s *TournamentService) Get(ctx context.Context, id string) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Get")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	item, err := s.writer.GetTournament(ctx, id)
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("get tournament id=%s: %w", id, err)
	}
	return item, nil
}

func (s *TournamentService) Update(ctx context.Context, t tournament.Tournament) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Update")
	defer span.End()

	if strings.TrimSpace(t.ID) == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	if err := validateTournament(t); err != nil {
		return tournament.Tournament{}, err
	}

	updated, err := s.writer.UpdateTournament(ctx, t)
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("update tournament id=%s: %w", t.ID, err)
	}
	return updated, nil
}

func (s *TournamentService) Delete(ctx context.Context, id string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Delete")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	if err := s.writer.DeleteTournament(ctx, id); err != nil {
		return fmt.Errorf("delete tournament id=%s: %w", id, err)
	}
	return nil
}

func validateTournament(t tournament.Tournament) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: tournament name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(t.Sport) == "" {
		return fmt.Errorf("%w: tournament sport is required", ErrInvalidInput)
	}
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return fmt.Errorf("%w: tournament end date precedes start date", ErrInvalidInput)
	}
	return nil
}
