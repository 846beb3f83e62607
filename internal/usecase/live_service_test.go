package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HeXi037/cross-sport-tracker/internal/domain/score"
)

type stubLiveSource struct {
	messages chan LiveMessage
	state    ConnectionState
	err      error
}

func (s *stubLiveSource) Subscribe(_ context.Context, _ string) (<-chan LiveMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.messages, nil
}

func (s *stubLiveSource) State() ConnectionState {
	if s.state == "" {
		return ConnectionConnected
	}
	return s.state
}

func newTracker(matchID string) *matchTracker {
	return &matchTracker{matchID: matchID, localPoints: make(score.RunningTotals)}
}

func pointEvent(side string) *score.Event {
	return &score.Event{Type: score.EventTypePoint, Side: side}
}

func TestMatchTrackerApply(t *testing.T) {
	t.Parallel()

	t.Run("point events increment local tallies", func(t *testing.T) {
		tracker := newTracker("m1")
		tracker.apply(LiveMessage{Event: pointEvent("A")})
		tracker.apply(LiveMessage{Event: pointEvent("A")})
		tracker.apply(LiveMessage{Event: pointEvent("B")})

		if tracker.localPoints["A"] != 2 || tracker.localPoints["B"] != 1 {
			t.Fatalf("unexpected tallies: %v", tracker.localPoints)
		}
	})

	t.Run("non-scoring events are ignored", func(t *testing.T) {
		tracker := newTracker("m1")
		tracker.apply(LiveMessage{Event: &score.Event{Type: "FAULT", Side: "A"}})
		tracker.apply(LiveMessage{Event: &score.Event{Type: score.EventTypePoint}})

		if len(tracker.localPoints) != 0 {
			t.Fatalf("unexpected tallies: %v", tracker.localPoints)
		}
	})

	t.Run("positive summary points supersede local tracking", func(t *testing.T) {
		tracker := newTracker("m1")
		tracker.apply(LiveMessage{Event: pointEvent("A")})
		tracker.apply(LiveMessage{Summary: &score.Summary{Points: score.RunningTotals{"A": 5, "B": 3}}})

		// Further raw events must not drift away from the authoritative
		// tally, even if the next summary omits points again.
		tracker.apply(LiveMessage{Event: pointEvent("B")})
		tracker.apply(LiveMessage{Summary: &score.Summary{}})
		tracker.apply(LiveMessage{Event: pointEvent("B")})

		if !tracker.superseded {
			t.Fatalf("expected tracker to be superseded")
		}
		if len(tracker.localPoints) != 0 {
			t.Fatalf("local tallies should be cleared: %v", tracker.localPoints)
		}
	})

	t.Run("zero-valued summary does not supersede", func(t *testing.T) {
		tracker := newTracker("m1")
		tracker.apply(LiveMessage{Summary: &score.Summary{Points: score.RunningTotals{"A": 0, "B": 0}}})
		tracker.apply(LiveMessage{Event: pointEvent("A")})

		if tracker.superseded {
			t.Fatalf("zero summary must not supersede")
		}
		if tracker.localPoints["A"] != 1 {
			t.Fatalf("unexpected tallies: %v", tracker.localPoints)
		}
	})

	t.Run("terminal status freezes local tallies", func(t *testing.T) {
		tracker := newTracker("m1")
		tracker.apply(LiveMessage{Event: pointEvent("A")})
		tracker.apply(LiveMessage{Status: "finished"})
		tracker.apply(LiveMessage{Event: pointEvent("A")})

		if tracker.localPoints["A"] != 1 {
			t.Fatalf("tally changed after terminal status: %v", tracker.localPoints)
		}
	})

	t.Run("reopened match resumes local tracking", func(t *testing.T) {
		tracker := newTracker("m1")
		tracker.apply(LiveMessage{Summary: &score.Summary{Points: score.RunningTotals{"A": 2}}})
		tracker.apply(LiveMessage{Status: "FINISHED"})
		tracker.apply(LiveMessage{Status: "LIVE"})
		tracker.apply(LiveMessage{Event: pointEvent("B")})

		if tracker.superseded {
			t.Fatalf("supersede flag should reset when the match reopens")
		}
		if tracker.localPoints["B"] != 1 {
			t.Fatalf("unexpected tallies: %v", tracker.localPoints)
		}
	})
}

func TestEffectiveSummary(t *testing.T) {
	t.Parallel()

	t.Run("local points overlay an absent summary", func(t *testing.T) {
		out := effectiveSummary(nil, score.RunningTotals{"A": 3})
		if out.Points["A"] != 3 {
			t.Fatalf("unexpected points: %v", out.Points)
		}
	})

	t.Run("positive summary points win over local", func(t *testing.T) {
		authoritative := &score.Summary{Points: score.RunningTotals{"A": 7}}
		out := effectiveSummary(authoritative, score.RunningTotals{"A": 2})
		if out.Points["A"] != 7 {
			t.Fatalf("unexpected points: %v", out.Points)
		}
	})
}

func TestDisplayedSetsAndGames(t *testing.T) {
	t.Parallel()

	t.Run("authoritative tallies pass through", func(t *testing.T) {
		sets, games := displayedSetsAndGames(&score.Summary{
			Sets:  score.RunningTotals{"A": 2, "B": 1},
			Games: score.RunningTotals{"A": 14, "B": 11},
		})
		if sets["A"] != 2 || games["B"] != 11 {
			t.Fatalf("unexpected tallies: sets=%v games=%v", sets, games)
		}
	})

	t.Run("derived from set history when tallies absent", func(t *testing.T) {
		sets, games := displayedSetsAndGames(&score.Summary{
			SetScores: []score.SetScore{{"A": 6, "B": 4}, {"A": 7, "B": 5}},
		})
		if sets["A"] != 2 || sets["B"] != 0 {
			t.Fatalf("unexpected set wins: %v", sets)
		}
		if games["A"] != 13 || games["B"] != 9 {
			t.Fatalf("unexpected games: %v", games)
		}
	})

	t.Run("all-zero data stays hidden", func(t *testing.T) {
		sets, games := displayedSetsAndGames(&score.Summary{
			SetScores: []score.SetScore{{"A": 0, "B": 0}},
		})
		if sets != nil || games != nil {
			t.Fatalf("expected nil tallies, got sets=%v games=%v", sets, games)
		}
	})
}

func TestLiveServiceWatch(t *testing.T) {
	t.Parallel()

	source := &stubLiveSource{messages: make(chan LiveMessage, 8)}
	svc, err := NewLiveService(source, LiveServiceOptions{PoolSize: 2})
	if err != nil {
		t.Fatalf("build live service: %v", err)
	}
	defer svc.Close()

	if _, err := svc.Watch(context.Background(), "m1"); err != nil {
		t.Fatalf("watch failed: %v", err)
	}

	source.messages <- LiveMessage{Status: "LIVE", Event: pointEvent("A")}
	source.messages <- LiveMessage{Event: pointEvent("A")}

	waitFor(t, func() bool {
		view, err := svc.View(context.Background(), "m1")
		return err == nil && view.Points["A"] == 2
	})

	view, err := svc.View(context.Background(), "m1")
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if view.Status != "LIVE" {
		t.Fatalf("unexpected status: %s", view.Status)
	}
	if view.Connection != ConnectionConnected {
		t.Fatalf("unexpected connection state: %s", view.Connection)
	}
	if view.Scoreline != "2" {
		t.Fatalf("unexpected scoreline: %s", view.Scoreline)
	}

	svc.Unwatch("m1")
	if _, err := svc.View(context.Background(), "m1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after unwatch, got %v", err)
	}
}

type stubEventLister struct {
	events []score.Event
	err    error
	limits []int
}

func (s *stubEventLister) ListEvents(_ context.Context, _ string, limit int) ([]score.Event, error) {
	s.limits = append(s.limits, limit)
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

func TestLiveServiceHistory(t *testing.T) {
	t.Parallel()

	t.Run("replays the archived tail", func(t *testing.T) {
		lister := &stubEventLister{events: []score.Event{
			{Type: score.EventTypePoint, Side: "A"},
			{Type: score.EventTypePoint, Side: "B"},
		}}
		source := &stubLiveSource{messages: make(chan LiveMessage)}
		svc, err := NewLiveService(source, LiveServiceOptions{PoolSize: 1, History: lister})
		if err != nil {
			t.Fatalf("build live service: %v", err)
		}
		defer svc.Close()

		events, err := svc.History(context.Background(), "m1", 50)
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if len(events) != 2 || events[0].Side != "A" || events[1].Side != "B" {
			t.Fatalf("unexpected events: %+v", events)
		}
		if len(lister.limits) != 1 || lister.limits[0] != 50 {
			t.Fatalf("limit not forwarded: %v", lister.limits)
		}
	})

	t.Run("empty match id is rejected", func(t *testing.T) {
		source := &stubLiveSource{messages: make(chan LiveMessage)}
		svc, err := NewLiveService(source, LiveServiceOptions{PoolSize: 1, History: &stubEventLister{}})
		if err != nil {
			t.Fatalf("build live service: %v", err)
		}
		defer svc.Close()

		if _, err := svc.History(context.Background(), "", 10); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("without an archive the tail is not found", func(t *testing.T) {
		source := &stubLiveSource{messages: make(chan LiveMessage)}
		svc, err := NewLiveService(source, LiveServiceOptions{PoolSize: 1})
		if err != nil {
			t.Fatalf("build live service: %v", err)
		}
		defer svc.Close()

		if _, err := svc.History(context.Background(), "m1", 10); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}
