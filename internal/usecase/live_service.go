package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/HeXi037/cross-sport-tracker/internal/domain/match"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/score"
	"github.com/HeXi037/cross-sport-tracker/internal/platform/logging"
)

const defaultWatcherPoolSize = 64

// LiveService keeps one score tracker per watched match, fed by a live
// source (push stream or polling fallback). Watcher goroutines run on a
// shared worker pool.
type LiveService struct {
	source  LiveSource
	archive EventArchiver
	history EventLister
	logger  *logging.Logger
	pool    *ants.Pool

	mu       sync.Mutex
	trackers map[string]*matchTracker
	cancels  map[string]context.CancelFunc
}

// matchTracker reconciles the displayed scoreline for one match. Local
// tallies accumulate from raw events only while the authoritative
// summary lacks positive values for the same metric; the summary wins
// permanently once it reports them, and a terminal match status freezes
// local tallies entirely.
type matchTracker struct {
	mu sync.Mutex

	matchID     string
	status      string
	finished    bool
	superseded  bool
	summary     *score.Summary
	localPoints score.RunningTotals
}

// LiveView is the snapshot served to callers.
type LiveView struct {
	MatchID    string
	Status     string
	Scoreline  string
	Points     score.RunningTotals
	Sets       score.RunningTotals
	Games      score.RunningTotals
	Connection ConnectionState
}

type LiveServiceOptions struct {
	PoolSize int
	Archive  EventArchiver
	History  EventLister
	Logger   *logging.Logger
}

func NewLiveService(source LiveSource, opts LiveServiceOptions) (*LiveService, error) {
	size := opts.PoolSize
	if size <= 0 {
		size = defaultWatcherPoolSize
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("create watcher pool: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &LiveService{
		source:   source,
		archive:  opts.Archive,
		history:  opts.History,
		logger:   logger,
		pool:     pool,
		trackers: make(map[string]*matchTracker),
		cancels:  make(map[string]context.CancelFunc),
	}, nil
}

// Watch ensures a watcher is running for the match and returns its
// current view. Watching an already-watched match is a cheap no-op.
func (s *LiveService) Watch(ctx context.Context, matchID string) (LiveView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveService.Watch")
	defer span.End()

	if matchID == "" {
		return LiveView{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	tracker, ok := s.trackers[matchID]
	if ok {
		s.mu.Unlock()
		return s.viewOf(tracker), nil
	}

	tracker = &matchTracker{
		matchID:     matchID,
		localPoints: make(score.RunningTotals),
	}
	s.trackers[matchID] = tracker

	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancels[matchID] = cancel
	s.mu.Unlock()

	if err := s.pool.Submit(func() { s.watch(watchCtx, tracker) }); err != nil {
		s.mu.Lock()
		delete(s.trackers, matchID)
		delete(s.cancels, matchID)
		s.mu.Unlock()
		cancel()
		return LiveView{}, fmt.Errorf("%w: watcher pool rejected match=%s: %v", ErrDependencyUnavailable, matchID, err)
	}

	return s.viewOf(tracker), nil
}

// View returns the current reconciled state without starting a watcher.
func (s *LiveService) View(ctx context.Context, matchID string) (LiveView, error) {
	_, span := startUsecaseSpan(ctx, "usecase.LiveService.View")
	defer span.End()

	s.mu.Lock()
	tracker, ok := s.trackers[matchID]
	s.mu.Unlock()
	if !ok {
		return LiveView{}, fmt.Errorf("%w: match=%s is not being watched", ErrNotFound, matchID)
	}
	return s.viewOf(tracker), nil
}

// History replays the archived event tail for a match in append order,
// capped at limit. Without an archive configured there is no tail to
// serve, which surfaces as not found.
func (s *LiveService) History(ctx context.Context, matchID string, limit int) ([]score.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveService.History")
	defer span.End()

	if matchID == "" {
		return nil, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if s.history == nil {
		return nil, fmt.Errorf("%w: event archive is disabled", ErrNotFound)
	}

	events, err := s.history.ListEvents(ctx, matchID, limit)
	if err != nil {
		return nil, fmt.Errorf("list archived events match=%s: %w", matchID, err)
	}
	return events, nil
}

// Unwatch stops the watcher for a match and drops its tracker.
func (s *LiveService) Unwatch(matchID string) {
	s.mu.Lock()
	cancel, ok := s.cancels[matchID]
	delete(s.cancels, matchID)
	delete(s.trackers, matchID)
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

// Close stops every watcher and releases the pool.
func (s *LiveService) Close() {
	s.mu.Lock()
	cancels := s.cancels
	s.cancels = make(map[string]context.CancelFunc)
	s.trackers = make(map[string]*matchTracker)
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	s.pool.Release()
}

func (s *LiveService) watch(ctx context.Context, tracker *matchTracker) {
	messages, err := s.source.Subscribe(ctx, tracker.matchID)
	if err != nil {
		s.logger.WarnContext(ctx, "live subscribe failed", "match_id", tracker.matchID, "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			tracker.apply(msg)
			if s.archive != nil && msg.Event != nil {
				if err := s.archive.AppendEvent(ctx, tracker.matchID, *msg.Event); err != nil {
					s.logger.WarnContext(ctx, "event archive failed", "match_id", tracker.matchID, "error", err)
				}
			}
		}
	}
}

// apply folds one live message into the tracker. Handlers run to
// completion under the tracker lock, so each message is all-or-nothing.
func (t *matchTracker) apply(msg LiveMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if msg.Status != "" {
		t.status = match.NormalizeStatus(msg.Status)
		wasFinished := t.finished
		t.finished = match.IsFinishedStatus(t.status)
		if wasFinished && !t.finished {
			// Match reopened: authoritative values may be withdrawn, so
			// local tracking is allowed to resume.
			t.superseded = false
		}
	}

	if msg.Summary != nil {
		t.summary = msg.Summary
		if msg.Summary.Points.HasPositive() {
			t.superseded = true
			t.localPoints = make(score.RunningTotals)
		}
	}

	if msg.Event != nil && msg.Event.IsScoring() && !t.finished && !t.superseded {
		t.localPoints[msg.Event.Side]++
	}
}

func (s *LiveService) viewOf(t *matchTracker) LiveView {
	t.mu.Lock()
	defer t.mu.Unlock()

	effective := effectiveSummary(t.summary, t.localPoints)
	sets, games := displayedSetsAndGames(t.summary)

	points := effective.Points.Clone()
	return LiveView{
		MatchID:    t.matchID,
		Status:     t.status,
		Scoreline:  effective.Scoreline(),
		Points:     points,
		Sets:       sets,
		Games:      games,
		Connection: s.source.State(),
	}
}

// effectiveSummary overlays local point tallies onto the authoritative
// summary when the summary has not yet reported positive points.
func effectiveSummary(authoritative *score.Summary, local score.RunningTotals) *score.Summary {
	var out score.Summary
	if authoritative != nil {
		out = *authoritative
	}
	if !out.Points.HasPositive() && local.HasPositive() {
		out.Points = local.Clone()
	}
	return &out
}

// displayedSetsAndGames prefers the authoritative per-set tallies and
// otherwise derives them from the set-score history. Derived values are
// surfaced only when at least one side is positive, so absent data never
// renders as a fabricated 0-0.
func displayedSetsAndGames(summary *score.Summary) (score.RunningTotals, score.RunningTotals) {
	if summary == nil {
		return nil, nil
	}

	sets := summary.Sets
	games := summary.Games
	if sets.HasPositive() || games.HasPositive() {
		return sets.Clone(), games.Clone()
	}

	if len(summary.SetScores) == 0 {
		return nil, nil
	}
	derivedSets, derivedGames := score.DeriveFromSets(summary.SetScores)
	if !derivedSets.HasPositive() && !derivedGames.HasPositive() {
		return nil, nil
	}
	return derivedSets, derivedGames
}
