package trackerapi

import (
	"time"

	"github.com/HeXi037/cross-sport-tracker/internal/domain/leaderboard"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/match"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/player"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/tournament"
)

// Wire rows mirror the upstream JSON payloads. Optional upstream fields
// stay pointers so absence survives the trip into the domain model.

type participantRow struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type matchRow struct {
	ID        string                      `json:"id"`
	Sides     map[string][]participantRow `json:"sides"`
	Sport     *string                     `json:"sport"`
	BestOf    *int                        `json:"bestOf"`
	PlayedAt  *time.Time                  `json:"playedAt"`
	Location  *string                     `json:"location"`
	RulesetID *string                     `json:"rulesetId"`
	Status    string                      `json:"status"`
}

func (r matchRow) toDomain() match.Summary {
	sides := make(map[string][]match.Participant, len(r.Sides))
	for side, members := range r.Sides {
		converted := make([]match.Participant, 0, len(members))
		for _, m := range members {
			converted = append(converted, match.Participant{PlayerID: m.PlayerID, Name: m.Name})
		}
		sides[side] = converted
	}

	return match.Summary{
		ID:        r.ID,
		Sides:     sides,
		Sport:     r.Sport,
		BestOf:    r.BestOf,
		PlayedAt:  r.PlayedAt,
		Location:  r.Location,
		RulesetID: r.RulesetID,
		Status:    match.NormalizeStatus(r.Status),
	}
}

type playerRow struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	CountryCode string     `json:"countryCode"`
	ClubID      string     `json:"clubId"`
	Hidden      bool       `json:"hidden"`
	CreatedAt   *time.Time `json:"createdAt"`
}

func (r playerRow) toDomain() player.Player {
	return player.Player{
		ID:          r.ID,
		Name:        r.Name,
		CountryCode: r.CountryCode,
		ClubID:      r.ClubID,
		Hidden:      r.Hidden,
		CreatedAt:   r.CreatedAt,
	}
}

type sportRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type leaderboardRow struct {
	Rank          int     `json:"rank"`
	PlayerID      string  `json:"playerId"`
	PlayerName    string  `json:"playerName"`
	Rating        float64 `json:"rating"`
	SetsWon       int     `json:"setsWon"`
	SetsLost      int     `json:"setsLost"`
	MatchesPlayed int     `json:"matchesPlayed"`
}

func (r leaderboardRow) toDomain() leaderboard.Entry {
	return leaderboard.Entry{
		Rank:          r.Rank,
		PlayerID:      r.PlayerID,
		PlayerName:    r.PlayerName,
		Rating:        r.Rating,
		SetsWon:       r.SetsWon,
		SetsLost:      r.SetsLost,
		MatchesPlayed: r.MatchesPlayed,
	}
}

type tournamentRow struct {
	ID        string     `json:"id,omitempty"`
	Sport     string     `json:"sport"`
	Name      string     `json:"name"`
	ClubID    string     `json:"clubId,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	CreatedBy string     `json:"createdBy,omitempty"`
}

func tournamentRowFromDomain(t tournament.Tournament) tournamentRow {
	return tournamentRow{
		ID:        t.ID,
		Sport:     t.Sport,
		Name:      t.Name,
		ClubID:    t.ClubID,
		StartDate: t.StartDate,
		EndDate:   t.EndDate,
		CreatedBy: t.CreatedBy,
	}
}

func (r tournamentRow) toDomain() tournament.Tournament {
	return tournament.Tournament{
		ID:        r.ID,
		Sport:     r.Sport,
		Name:      r.Name,
		ClubID:    r.ClubID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		CreatedBy: r.CreatedBy,
	}
}
