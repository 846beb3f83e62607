package match

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusCancelled = "CANCELLED"
)

// Participant is one player on a side of a match.
type Participant struct {
	PlayerID string
	Name     string
}

// Summary is one row of the match feed. Rows are immutable once fetched
// and compared by ID only.
type Summary struct {
	ID        string
	Sides     map[string][]Participant
	Sport     *string
	BestOf    *int
	PlayedAt  *time.Time
	Location  *string
	RulesetID *string
	Status    string
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusLive, "IN_PLAY", "IN_PROGRESS":
		return true
	default:
		return false
	}
}

// IsFinishedStatus reports whether the status is terminal. Local score
// tallies stop updating once a match reaches a terminal status.
func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "COMPLETED", "ENDED", "RETIRED", "WALKOVER":
		return true
	default:
		return false
	}
}

func IsCancelledLikeStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusCancelled, "POSTPONED", "ABANDONED":
		return true
	default:
		return false
	}
}
