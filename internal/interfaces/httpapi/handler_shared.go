package httpapi

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/HeXi037/cross-sport-tracker/internal/domain/leaderboard"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/match"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/player"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/score"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/tournament"
	"github.com/HeXi037/cross-sport-tracker/internal/platform/logging"
	"github.com/HeXi037/cross-sport-tracker/internal/usecase"
)

type Handler struct {
	feedService        *usecase.FeedService
	liveService        *usecase.LiveService
	referenceService   *usecase.ReferenceService
	leaderboardService *usecase.LeaderboardService
	tournamentService  *usecase.TournamentService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	feedService *usecase.FeedService,
	liveService *usecase.LiveService,
	referenceService *usecase.ReferenceService,
	leaderboardService *usecase.LeaderboardService,
	tournamentService *usecase.TournamentService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		feedService:        feedService,
		liveService:        liveService,
		referenceService:   referenceService,
		leaderboardService: leaderboardService,
		tournamentService:  tournamentService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type participantDTO struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type matchDTO struct {
	ID        string                      `json:"id"`
	Sides     map[string][]participantDTO `json:"sides"`
	Sport     string                      `json:"sport,omitempty"`
	BestOf    *int                        `json:"bestOf,omitempty"`
	PlayedAt  string                      `json:"playedAt,omitempty"`
	Location  string                      `json:"location,omitempty"`
	RulesetID string                      `json:"rulesetId,omitempty"`
	Status    string                      `json:"status"`
}

type feedViewDTO struct {
	Sport      string     `json:"sport,omitempty"`
	Rows       []matchDTO `json:"rows"`
	Limit      int        `json:"limit"`
	NextOffset *int       `json:"nextOffset,omitempty"`
	HasMore    bool       `json:"hasMore"`
	Loading    bool       `json:"loading"`
	Error      string     `json:"error,omitempty"`
}

type liveViewDTO struct {
	MatchID    string         `json:"matchId"`
	Status     string         `json:"status"`
	Scoreline  string         `json:"scoreline"`
	Points     map[string]int `json:"points,omitempty"`
	Sets       map[string]int `json:"sets,omitempty"`
	Games      map[string]int `json:"games,omitempty"`
	Connection string         `json:"connection"`
}

type matchEventDTO struct {
	Type      string         `json:"type"`
	Side      string         `json:"side,omitempty"`
	CreatedAt string         `json:"createdAt,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

type playerDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CountryCode string `json:"countryCode,omitempty"`
	ClubID      string `json:"clubId,omitempty"`
	Hidden      bool   `json:"hidden"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

type sportDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type referenceOverviewDTO struct {
	Players []playerDTO `json:"players"`
	Sports  []sportDTO  `json:"sports"`
}

type leaderboardEntryDTO struct {
	Rank          int     `json:"rank"`
	PlayerID      string  `json:"playerId"`
	PlayerName    string  `json:"playerName"`
	Rating        float64 `json:"rating"`
	SetsWon       int     `json:"setsWon"`
	SetsLost      int     `json:"setsLost"`
	MatchesPlayed int     `json:"matchesPlayed"`
}

type tournamentDTO struct {
	ID        string `json:"id"`
	Sport     string `json:"sport"`
	Name      string `json:"name"`
	ClubID    string `json:"clubId,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	CreatedBy string `json:"createdBy,omitempty"`
}

type upsertTournamentRequest struct {
	Sport     string `json:"sport" validate:"required,max=40"`
	Name      string `json:"name" validate:"required,max=120"`
	ClubID    string `json:"clubId" validate:"omitempty,max=80"`
	StartDate string `json:"startDate" validate:"omitempty"`
	EndDate   string `json:"endDate" validate:"omitempty"`
	CreatedBy string `json:"createdBy" validate:"omitempty,max=80"`
}

func matchToDTO(ctx context.Context, v match.Summary) matchDTO {
	ctx, span := startSpan(ctx, "httpapi.matchToDTO")
	defer span.End()

	sides := make(map[string][]participantDTO, len(v.Sides))
	for side, members := range v.Sides {
		converted := make([]participantDTO, 0, len(members))
		for _, m := range members {
			converted = append(converted, participantDTO{PlayerID: m.PlayerID, Name: m.Name})
		}
		sides[side] = converted
	}

	return matchDTO{
		ID:        v.ID,
		Sides:     sides,
		Sport:     stringValue(v.Sport),
		BestOf:    v.BestOf,
		PlayedAt:  formatOptionalTime(v.PlayedAt),
		Location:  stringValue(v.Location),
		RulesetID: stringValue(v.RulesetID),
		Status:    v.Status,
	}
}

func feedViewToDTO(ctx context.Context, view usecase.FeedView) feedViewDTO {
	ctx, span := startSpan(ctx, "httpapi.feedViewToDTO")
	defer span.End()

	rows := make([]matchDTO, 0, len(view.Rows))
	for _, row := range view.Rows {
		rows = append(rows, matchToDTO(ctx, row))
	}

	return feedViewDTO{
		Sport:      view.Key,
		Rows:       rows,
		Limit:      view.Limit,
		NextOffset: view.NextOffset,
		HasMore:    view.HasMore,
		Loading:    view.Loading,
		Error:      view.ErrMessage,
	}
}

func liveViewToDTO(view usecase.LiveView) liveViewDTO {
	return liveViewDTO{
		MatchID:    view.MatchID,
		Status:     view.Status,
		Scoreline:  view.Scoreline,
		Points:     view.Points,
		Sets:       view.Sets,
		Games:      view.Games,
		Connection: string(view.Connection),
	}
}

func matchEventToDTO(ev score.Event) matchEventDTO {
	dto := matchEventDTO{Type: ev.Type, Side: ev.Side, Fields: ev.Fields}
	if !ev.CreatedAt.IsZero() {
		dto.CreatedAt = ev.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func playerToDTO(v player.Player) playerDTO {
	return playerDTO{
		ID:          v.ID,
		Name:        v.Name,
		CountryCode: v.CountryCode,
		ClubID:      v.ClubID,
		Hidden:      v.Hidden,
		CreatedAt:   formatOptionalTime(v.CreatedAt),
	}
}

func leaderboardEntryToDTO(v leaderboard.Entry) leaderboardEntryDTO {
	return leaderboardEntryDTO{
		Rank:          v.Rank,
		PlayerID:      v.PlayerID,
		PlayerName:    v.PlayerName,
		Rating:        v.Rating,
		SetsWon:       v.SetsWon,
		SetsLost:      v.SetsLost,
		MatchesPlayed: v.MatchesPlayed,
	}
}

func tournamentToDTO(v tournament.Tournament) tournamentDTO {
	return tournamentDTO{
		ID:        v.ID,
		Sport:     v.Sport,
		Name:      v.Name,
		ClubID:    v.ClubID,
		StartDate: formatOptionalTime(v.StartDate),
		EndDate:   formatOptionalTime(v.EndDate),
		CreatedBy: v.CreatedBy,
	}
}

func (r upsertTournamentRequest) toDomain(id string) (tournament.Tournament, error) {
	start, err := parseOptionalTime(r.StartDate)
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("%w: invalid startDate: %v", usecase.ErrInvalidInput, err)
	}
	end, err := parseOptionalTime(r.EndDate)
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("%w: invalid endDate: %v", usecase.ErrInvalidInput, err)
	}

	return tournament.Tournament{
		ID:        id,
		Sport:     r.Sport,
		Name:      r.Name,
		ClubID:    r.ClubID,
		StartDate: start,
		EndDate:   end,
		CreatedBy: r.CreatedBy,
	}, nil
}

func parseOptionalTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return &ts, nil
	}
	ts, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func formatOptionalTime(v *time.Time) string {
	if v == nil || v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

func stringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
