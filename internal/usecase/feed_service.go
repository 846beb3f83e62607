package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/HeXi037/cross-sport-tracker/internal/domain/match"
	"github.com/HeXi037/cross-sport-tracker/internal/platform/logging"
)

const (
	defaultFeedPageSize  = 25
	defaultFetchDeadline = 10 * time.Second
)

// FeedService maintains one reconciled match feed per sport filter.
// Each feed is an ordered, de-duplicated sequence of match rows plus the
// pagination cursor needed to extend it.
type FeedService struct {
	lister   MatchLister
	archive  FeedArchiver
	logger   *logging.Logger
	pageSize int
	deadline time.Duration
	now      func() time.Time

	mu    sync.Mutex
	feeds map[string]*feedState
}

// feedState is the mutable state behind one feed. The busy flag guards
// against overlapping load-more calls; the sequence number discards
// responses from superseded requests.
type feedState struct {
	mu sync.Mutex

	key        string
	rows       []match.Summary
	limit      int
	nextOffset *int
	hasMore    bool
	loaded     bool

	loadingMore bool
	errMessage  string
	seq         uint64
}

// FeedView is an immutable snapshot of a feed handed to callers.
type FeedView struct {
	Key        string
	Rows       []match.Summary
	Limit      int
	NextOffset *int
	HasMore    bool
	Loading    bool
	ErrMessage string
}

type FeedServiceOptions struct {
	PageSize      int
	FetchDeadline time.Duration
	Archive       FeedArchiver
	Logger        *logging.Logger
}

func NewFeedService(lister MatchLister, opts FeedServiceOptions) *FeedService {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultFeedPageSize
	}
	deadline := opts.FetchDeadline
	if deadline <= 0 {
		deadline = defaultFetchDeadline
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &FeedService{
		lister:   lister,
		archive:  opts.Archive,
		logger:   logger,
		pageSize: pageSize,
		deadline: deadline,
		now:      time.Now,
		feeds:    make(map[string]*feedState),
	}
}

// MergePage combines the previously displayed rows with a freshly
// fetched page. Rows from previous whose ID is absent from incoming
// ("carryover") are appended after the incoming rows so nothing visibly
// disappears. When previous and incoming carry exactly the same IDs in
// the same order the previous slice is returned unchanged, so callers
// holding a reference see no spurious update.
func MergePage(previous, incoming []match.Summary) ([]match.Summary, bool) {
	if len(previous) == 0 {
		return incoming, false
	}

	incomingIDs := make(map[string]struct{}, len(incoming))
	for _, row := range incoming {
		incomingIDs[row.ID] = struct{}{}
	}

	carryover := make([]match.Summary, 0)
	for _, row := range previous {
		if _, ok := incomingIDs[row.ID]; !ok {
			carryover = append(carryover, row)
		}
	}

	if len(carryover) == 0 {
		if sameIDOrder(previous, incoming) {
			return previous, false
		}
		return incoming, false
	}

	merged := make([]match.Summary, 0, len(incoming)+len(carryover))
	merged = append(merged, incoming...)
	merged = append(merged, carryover...)
	return merged, true
}

func sameIDOrder(a, b []match.Summary) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

// resolveNextOffset decides the next pagination offset after a merge.
// Without stale carryover the incoming cursor replaces the current one
// outright. With carryover an absent incoming cursor keeps the current
// one (pages may still exist behind the carryover), and when both are
// numeric the larger wins so the cursor never regresses.
func resolveNextOffset(current, incoming *int, staleCarryover bool) *int {
	if !staleCarryover {
		return incoming
	}
	if incoming == nil {
		return current
	}
	if current == nil {
		return incoming
	}
	if *current > *incoming {
		return current
	}
	return incoming
}

func (s *FeedService) feed(key string) *feedState {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.feeds[key]
	if !ok {
		f = &feedState{key: key, limit: s.pageSize}
		s.feeds[key] = f
	}
	return f
}

// Snapshot returns the current view of a feed without touching upstream.
func (s *FeedService) Snapshot(ctx context.Context, sportKey string) FeedView {
	_, span := startUsecaseSpan(ctx, "usecase.FeedService.Snapshot")
	defer span.End()

	f := s.feed(normalizeFeedKey(sportKey))
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

// Refresh fetches the first page and reconciles it with whatever the
// feed already shows. Rows already displayed but missing from the fresh
// page are carried over rather than dropped.
func (s *FeedService) Refresh(ctx context.Context, sportKey string) (FeedView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeedService.Refresh")
	defer span.End()

	key := normalizeFeedKey(sportKey)
	f := s.feed(key)

	f.mu.Lock()
	f.seq++
	mySeq := f.seq
	previous := f.rows
	limit := f.limit
	currentOffset := f.nextOffset
	hadMore := f.hasMore
	f.mu.Unlock()

	page, err := s.fetchPage(ctx, MatchQuery{Sport: key, Limit: limit, Offset: 0})

	f.mu.Lock()
	defer f.mu.Unlock()

	if mySeq != f.seq {
		// A newer request was issued while this one was in flight.
		return f.viewLocked(), nil
	}

	if err != nil {
		f.errMessage = err.Error()
		return f.viewLocked(), err
	}

	merged, stale := MergePage(previous, page.Items)
	f.rows = merged
	f.nextOffset = resolveNextOffset(currentOffset, page.Cursor.NextOffset, stale)
	if stale && page.Cursor.NextOffset == nil {
		f.hasMore = hadMore || page.Cursor.HasMore
	} else {
		f.hasMore = page.Cursor.HasMore
	}
	if page.Cursor.Limit > 0 {
		f.limit = page.Cursor.Limit
	}
	f.loaded = true
	f.errMessage = ""

	s.archiveSnapshot(ctx, f)
	return f.viewLocked(), nil
}

// LoadMore extends the feed by one page at the current cursor. Invoked
// while a load is already running, or when the server declared no
// further page, it is a no-op rather than an error. On a failed fetch
// the displayed rows are left untouched and the error is surfaced on
// the view for an explicit retry.
func (s *FeedService) LoadMore(ctx context.Context, sportKey string) (FeedView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeedService.LoadMore")
	defer span.End()

	key := normalizeFeedKey(sportKey)
	f := s.feed(key)

	f.mu.Lock()
	if !f.hasMore || f.loadingMore {
		view := f.viewLocked()
		f.mu.Unlock()
		return view, nil
	}
	offset := 0
	if f.nextOffset != nil {
		offset = *f.nextOffset
	} else {
		offset = len(f.rows)
	}
	f.loadingMore = true
	f.seq++
	mySeq := f.seq
	limit := f.limit
	f.mu.Unlock()

	page, err := s.fetchPage(ctx, MatchQuery{Sport: key, Limit: limit, Offset: offset})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadingMore = false

	if mySeq != f.seq {
		return f.viewLocked(), nil
	}

	if err != nil {
		f.errMessage = err.Error()
		return f.viewLocked(), err
	}

	f.rows = upsertRows(f.rows, page.Items)
	f.nextOffset = page.Cursor.NextOffset
	f.hasMore = page.Cursor.HasMore
	if page.Cursor.Limit > 0 {
		f.limit = page.Cursor.Limit
	}
	f.errMessage = ""

	s.archiveSnapshot(ctx, f)
	return f.viewLocked(), nil
}

func (s *FeedService) fetchPage(ctx context.Context, q MatchQuery) (MatchPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.deadline)
	defer cancel()

	page, err := s.lister.ListMatches(ctx, q)
	if err != nil {
		return MatchPage{}, fmt.Errorf("list matches sport=%q offset=%d: %w", q.Sport, q.Offset, err)
	}
	return page, nil
}

// upsertRows merges a page into the existing sequence by ID: rows
// already present are replaced in place, new rows are appended.
func upsertRows(existing, incoming []match.Summary) []match.Summary {
	indexByID := make(map[string]int, len(existing))
	for i, row := range existing {
		indexByID[row.ID] = i
	}

	out := make([]match.Summary, len(existing), len(existing)+len(incoming))
	copy(out, existing)
	for _, row := range incoming {
		if i, ok := indexByID[row.ID]; ok {
			out[i] = row
			continue
		}
		indexByID[row.ID] = len(out)
		out = append(out, row)
	}
	return out
}

// archiveSnapshot is best-effort: failures are logged and never affect
// the served feed. Caller holds f.mu.
func (s *FeedService) archiveSnapshot(ctx context.Context, f *feedState) {
	if s.archive == nil {
		return
	}
	cursor := PageCursor{Limit: f.limit, NextOffset: f.nextOffset, HasMore: f.hasMore}
	if err := s.archive.SaveFeedSnapshot(ctx, f.key, f.rows, cursor, s.now()); err != nil {
		s.logger.WarnContext(ctx, "feed snapshot archive failed", "feed_key", f.key, "error", err)
	}
}

func (f *feedState) viewLocked() FeedView {
	return FeedView{
		Key:        f.key,
		Rows:       f.rows,
		Limit:      f.limit,
		NextOffset: f.nextOffset,
		HasMore:    f.hasMore,
		Loading:    f.loadingMore,
		ErrMessage: f.errMessage,
	}
}

func normalizeFeedKey(sportKey string) string {
	return strings.ToLower(strings.TrimSpace(sportKey))
}
