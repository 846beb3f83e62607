package score

import "testing"

func TestDeriveFromSets(t *testing.T) {
	t.Parallel()

	t.Run("strictly higher score wins the set", func(t *testing.T) {
		sets, games := DeriveFromSets([]SetScore{
			{"A": 6, "B": 4},
			{"A": 7, "B": 5},
		})

		if sets["A"] != 2 || sets["B"] != 0 {
			t.Fatalf("unexpected set wins: %v", sets)
		}
		if games["A"] != 13 || games["B"] != 9 {
			t.Fatalf("unexpected games: %v", games)
		}
	})

	t.Run("tied set awards neither side", func(t *testing.T) {
		sets, games := DeriveFromSets([]SetScore{
			{"A": 6, "B": 6},
			{"A": 6, "B": 3},
		})

		if sets["A"] != 1 || sets["B"] != 0 {
			t.Fatalf("unexpected set wins: %v", sets)
		}
		if games["A"] != 12 || games["B"] != 9 {
			t.Fatalf("unexpected games: %v", games)
		}
	})

	t.Run("every seen side gets a zero-initialized entry", func(t *testing.T) {
		sets, _ := DeriveFromSets([]SetScore{{"A": 11, "B": 9}})
		if _, ok := sets["B"]; !ok {
			t.Fatalf("losing side missing from set wins: %v", sets)
		}
	})

	t.Run("empty history yields empty tallies", func(t *testing.T) {
		sets, games := DeriveFromSets(nil)
		if len(sets) != 0 || len(games) != 0 {
			t.Fatalf("unexpected tallies: sets=%v games=%v", sets, games)
		}
	})
}

func TestScoreline(t *testing.T) {
	t.Parallel()

	t.Run("set history renders per-set scores", func(t *testing.T) {
		s := &Summary{SetScores: []SetScore{{"A": 6, "B": 4}, {"A": 7, "B": 5}}}
		if got := s.Scoreline(); got != "6-4, 7-5" {
			t.Fatalf("unexpected scoreline: %q", got)
		}
	})

	t.Run("set history wins over other metrics", func(t *testing.T) {
		s := &Summary{
			SetScores: []SetScore{{"A": 6, "B": 4}},
			Sets:      RunningTotals{"A": 1, "B": 0},
			Points:    RunningTotals{"A": 30, "B": 15},
		}
		if got := s.Scoreline(); got != "6-4" {
			t.Fatalf("unexpected scoreline: %q", got)
		}
	})

	t.Run("metric precedence follows sets then games then points", func(t *testing.T) {
		s := &Summary{
			Games:  RunningTotals{"A": 4, "B": 2},
			Points: RunningTotals{"A": 40, "B": 30},
		}
		if got := s.Scoreline(); got != "4-2" {
			t.Fatalf("unexpected scoreline: %q", got)
		}
	})

	t.Run("single-sided metric renders the bare value", func(t *testing.T) {
		s := &Summary{Points: RunningTotals{"A": 11}}
		if got := s.Scoreline(); got != "11" {
			t.Fatalf("unexpected scoreline: %q", got)
		}
	})

	t.Run("scalar total is the last resort before the placeholder", func(t *testing.T) {
		total := 42.5
		s := &Summary{Total: &total}
		if got := s.Scoreline(); got != "42.5" {
			t.Fatalf("unexpected scoreline: %q", got)
		}
	})

	t.Run("empty summary renders the placeholder", func(t *testing.T) {
		s := &Summary{}
		if got := s.Scoreline(); got != ScorelinePlaceholder {
			t.Fatalf("unexpected scoreline: %q", got)
		}
		var nilSummary *Summary
		if got := nilSummary.Scoreline(); got != ScorelinePlaceholder {
			t.Fatalf("unexpected nil scoreline: %q", got)
		}
	})

	t.Run("sides render in lexicographic order", func(t *testing.T) {
		s := &Summary{Score: RunningTotals{"home": 3, "away": 1}}
		if got := s.Scoreline(); got != "1-3" {
			t.Fatalf("unexpected scoreline: %q", got)
		}
	})
}

func TestEventIsScoring(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		ev   Event
		want bool
	}{
		{"point with side", Event{Type: "POINT", Side: "A"}, true},
		{"lowercase type", Event{Type: "point", Side: "B"}, true},
		{"missing side", Event{Type: "POINT"}, false},
		{"other type", Event{Type: "FAULT", Side: "A"}, false},
		{"blank side", Event{Type: "POINT", Side: "  "}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.ev.IsScoring(); got != tc.want {
				t.Fatalf("IsScoring=%t want=%t", got, tc.want)
			}
		})
	}
}
