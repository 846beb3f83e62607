package usecase

import (
	"context"
	"time"

	"github.com/HeXi037/cross-sport-tracker/internal/domain/leaderboard"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/match"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/player"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/score"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/sport"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/tournament"
)

// PageCursor is the pagination position returned by the upstream match
// list. A nil NextOffset means the server declared no further page.
type PageCursor struct {
	Limit      int
	NextOffset *int
	HasMore    bool
}

// MatchQuery selects one page of the upstream match list.
type MatchQuery struct {
	Sport  string
	Limit  int
	Offset int
}

// MatchPage is one fetched page plus the cursor extracted from the
// response headers.
type MatchPage struct {
	Items  []match.Summary
	Cursor PageCursor
}

// MatchLister fetches match list pages from the upstream service.
type MatchLister interface {
	ListMatches(ctx context.Context, q MatchQuery) (MatchPage, error)
}

// ReferenceReader fetches the small reference collections the feed
// decorates rows with.
type ReferenceReader interface {
	ListPlayers(ctx context.Context) ([]player.Player, error)
	ListSports(ctx context.Context) ([]sport.Sport, error)
	ListLeaderboard(ctx context.Context, sportID string) ([]leaderboard.Entry, error)
}

// TournamentWriter proxies tournament CRUD to the upstream service.
type TournamentWriter interface {
	CreateTournament(ctx context.Context, t tournament.Tournament) (tournament.Tournament, error)
	GetTournament(ctx context.Context, id string) (tournament.Tournament, error)
	UpdateTournament(ctx context.Context, t tournament.Tournament) (tournament.Tournament, error)
	DeleteTournament(ctx context.Context, id string) error
}

// ConnectionState describes how live updates currently reach the
// gateway. It is presentational only and carries no data guarantee.
type ConnectionState string

const (
	ConnectionConnected       ConnectionState = "connected"
	ConnectionFallbackPolling ConnectionState = "fallback-polling"
	ConnectionOffline         ConnectionState = "offline"
)

// LiveMessage is one normalized message from a match's live channel.
// All fields are optional; a malformed summary arrives as nil.
type LiveMessage struct {
	Summary *score.Summary
	Event   *score.Event
	Status  string
}

// LiveSource delivers live updates for one match, either over a push
// stream or a polling fallback. Subscribe returns a channel that closes
// when the source gives up or ctx is cancelled.
type LiveSource interface {
	Subscribe(ctx context.Context, matchID string) (<-chan LiveMessage, error)
	State() ConnectionState
}

// FeedArchiver persists reconciled feed snapshots. Implementations must
// tolerate being nil-checked away; archiving is best-effort.
type FeedArchiver interface {
	SaveFeedSnapshot(ctx context.Context, key string, rows []match.Summary, cursor PageCursor, capturedAt time.Time) error
}

// EventArchiver persists the live event tail per match.
type EventArchiver interface {
	AppendEvent(ctx context.Context, matchID string, ev score.Event) error
}

// EventLister reads back an archived event tail in append order.
type EventLister interface {
	ListEvents(ctx context.Context, matchID string, limit int) ([]score.Event, error)
}
