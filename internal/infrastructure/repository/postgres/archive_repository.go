package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/HeXi037/cross-sport-tracker/internal/domain/match"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/score"
	"github.com/HeXi037/cross-sport-tracker/internal/usecase"
)

// ArchiveRepository persists reconciled feed snapshots and the live
// event tail. It backs both archiver contracts of the usecase layer.
type ArchiveRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewArchiveRepository(db *sqlx.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db, now: time.Now}
}

// SaveFeedSnapshot upserts the latest snapshot per feed key. Only the
// most recent snapshot is kept; history lives in the upstream service.
func (r *ArchiveRepository) SaveFeedSnapshot(ctx context.Context, key string, rows []match.Summary, cursor usecase.PageCursor, capturedAt time.Time) error {
	row, err := feedSnapshotToRow(key, rows, cursor, capturedAt)
	if err != nil {
		return fmt.Errorf("encode feed snapshot key=%s: %w", key, err)
	}

	const query = `
		INSERT INTO feed_snapshots (feed_key, rows, limit_size, next_offset, has_more, captured_at)
		VALUES (:feed_key, :rows, :limit_size, :next_offset, :has_more, :captured_at)
		ON CONFLICT (feed_key) DO UPDATE SET
			rows = EXCLUDED.rows,
			limit_size = EXCLUDED.limit_size,
			next_offset = EXCLUDED.next_offset,
			has_more = EXCLUDED.has_more,
			captured_at = EXCLUDED.captured_at`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("save feed snapshot key=%s: %w", key, err)
	}
	return nil
}

// AppendEvent appends one live event to the match's archive tail.
func (r *ArchiveRepository) AppendEvent(ctx context.Context, matchID string, ev score.Event) error {
	row, err := matchEventToRow(matchID, ev, r.now())
	if err != nil {
		return fmt.Errorf("encode match event match=%s: %w", matchID, err)
	}

	const query = `
		INSERT INTO match_events (match_id, event_type, side, created_at, fields, recorded_at)
		VALUES (:match_id, :event_type, :side, :created_at, :fields, :recorded_at)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("append match event match=%s: %w", matchID, err)
	}
	return nil
}

// ListEvents returns the archived event tail for a match in append
// order, capped at limit.
func (r *ArchiveRepository) ListEvents(ctx context.Context, matchID string, limit int) ([]score.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	const query = `
		SELECT match_id, event_type, side, created_at, fields, recorded_at
		FROM match_events
		WHERE match_id = $1
		ORDER BY recorded_at ASC
		LIMIT $2`

	var rows []matchEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, matchID, limit); err != nil {
		return nil, fmt.Errorf("list match events match=%s: %w", matchID, err)
	}

	out := make([]score.Event, 0, len(rows))
	for _, row := range rows {
		ev, err := matchEventFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode match event match=%s: %w", matchID, err)
		}
		out = append(out, ev)
	}
	return out, nil
}
