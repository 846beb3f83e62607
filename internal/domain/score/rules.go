package score

import (
	"sort"
	"strconv"
	"strings"
)

// ScorelinePlaceholder is rendered when no score data is available at all.
const ScorelinePlaceholder = "—"

// DeriveFromSets recomputes set wins and game counts from a set-score
// history. The side with the strictly higher score wins the set; a tie
// awards the set to neither side but still counts toward both sides'
// game totals.
func DeriveFromSets(sets []SetScore) (setWins, games RunningTotals) {
	setWins = make(RunningTotals)
	games = make(RunningTotals)

	for _, set := range sets {
		winner := ""
		best := 0
		tied := false
		for side, value := range set {
			games[side] += value
			if _, seen := setWins[side]; !seen {
				setWins[side] = 0
			}
			switch {
			case winner == "" || value > best:
				winner = side
				best = value
				tied = false
			case value == best:
				tied = true
			}
		}
		if winner != "" && !tied {
			setWins[winner]++
		}
	}

	return setWins, games
}

// Scoreline renders the compact textual score, e.g. "6-4, 7-5".
//
// Precedence: a set-score history wins outright; otherwise the first
// summary metric (sets, games, points, score, totals) carrying at least
// two sides is rendered "A-B"; otherwise a scalar total; otherwise the
// placeholder. A nil summary renders the placeholder.
func (s *Summary) Scoreline() string {
	if s == nil {
		return ScorelinePlaceholder
	}

	if len(s.SetScores) > 0 {
		parts := make([]string, 0, len(s.SetScores))
		for _, set := range s.SetScores {
			if len(set) == 0 {
				continue
			}
			parts = append(parts, joinSides(set))
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}

	for _, name := range metricOrder {
		values := s.metric(name)
		if len(values) >= 2 {
			return joinSides(values)
		}
		if len(values) == 1 {
			for _, v := range values {
				return strconv.Itoa(v)
			}
		}
	}

	if s.Total != nil {
		return strconv.FormatFloat(*s.Total, 'f', -1, 64)
	}

	return ScorelinePlaceholder
}

// joinSides renders side values in lexicographic side-key order so the
// output is stable regardless of map iteration.
func joinSides(values map[string]int) string {
	sides := make([]string, 0, len(values))
	for side := range values {
		sides = append(sides, side)
	}
	sort.Strings(sides)

	parts := make([]string, 0, len(sides))
	for _, side := range sides {
		parts = append(parts, strconv.Itoa(values[side]))
	}
	return strings.Join(parts, "-")
}
