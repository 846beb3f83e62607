package score

import (
	"strings"
	"time"
)

// EventTypePoint is the only event type that feeds local tallies; the
// comparison is case-insensitive.
const EventTypePoint = "POINT"

// Event is one entry read from a match's append-only event log.
type Event struct {
	Type      string
	Side      string
	CreatedAt time.Time
	Fields    map[string]any
}

// IsScoring reports whether the event should increment a side's tally.
// Events without a recognizable type or side are ignored.
func (e Event) IsScoring() bool {
	return strings.EqualFold(strings.TrimSpace(e.Type), EventTypePoint) &&
		strings.TrimSpace(e.Side) != ""
}

// RunningTotals maps a side identifier to an integer count.
type RunningTotals map[string]int

func (t RunningTotals) HasPositive() bool {
	for _, v := range t {
		if v > 0 {
			return true
		}
	}
	return false
}

func (t RunningTotals) Clone() RunningTotals {
	if t == nil {
		return nil
	}
	out := make(RunningTotals, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// SetScore records one completed (or in-progress) set as side -> games.
type SetScore map[string]int

// Summary is the authoritative aggregate score supplied by the server.
// Every field is optional; absent metrics may be derived client-side.
type Summary struct {
	Sets      RunningTotals
	Games     RunningTotals
	Points    RunningTotals
	Score     RunningTotals
	Totals    RunningTotals
	Total     *float64
	SetScores []SetScore
}

// metricOrder is the fixed field priority for scoreline rendering.
var metricOrder = []string{"sets", "games", "points", "score", "totals"}

func (s *Summary) metric(name string) RunningTotals {
	if s == nil {
		return nil
	}
	switch name {
	case "sets":
		return s.Sets
	case "games":
		return s.Games
	case "points":
		return s.Points
	case "score":
		return s.Score
	case "totals":
		return s.Totals
	default:
		return nil
	}
}
