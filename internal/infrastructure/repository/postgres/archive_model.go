package postgres

import (
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/HeXi037/cross-sport-tracker/internal/domain/match"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/score"
	"github.com/HeXi037/cross-sport-tracker/internal/usecase"
)

type feedSnapshotTableModel struct {
	FeedKey    string    `db:"feed_key"`
	Rows       []byte    `db:"rows"`
	LimitSize  int       `db:"limit_size"`
	NextOffset *int      `db:"next_offset"`
	HasMore    bool      `db:"has_more"`
	CapturedAt time.Time `db:"captured_at"`
}

type matchEventTableModel struct {
	MatchID    string    `db:"match_id"`
	EventType  string    `db:"event_type"`
	Side       string    `db:"side"`
	CreatedAt  time.Time `db:"created_at"`
	Fields     []byte    `db:"fields"`
	RecordedAt time.Time `db:"recorded_at"`
}

func feedSnapshotToRow(key string, rows []match.Summary, cursor usecase.PageCursor, capturedAt time.Time) (feedSnapshotTableModel, error) {
	encoded, err := sonic.Marshal(rows)
	if err != nil {
		return feedSnapshotTableModel{}, err
	}

	return feedSnapshotTableModel{
		FeedKey:    key,
		Rows:       encoded,
		LimitSize:  cursor.Limit,
		NextOffset: cursor.NextOffset,
		HasMore:    cursor.HasMore,
		CapturedAt: capturedAt.UTC(),
	}, nil
}

func matchEventToRow(matchID string, ev score.Event, recordedAt time.Time) (matchEventTableModel, error) {
	fields := ev.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	encoded, err := sonic.Marshal(fields)
	if err != nil {
		return matchEventTableModel{}, err
	}

	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = recordedAt
	}

	return matchEventTableModel{
		MatchID:    matchID,
		EventType:  ev.Type,
		Side:       ev.Side,
		CreatedAt:  createdAt.UTC(),
		Fields:     encoded,
		RecordedAt: recordedAt.UTC(),
	}, nil
}

func matchEventFromRow(row matchEventTableModel) (score.Event, error) {
	var fields map[string]any
	if len(row.Fields) > 0 {
		if err := sonic.Unmarshal(row.Fields, &fields); err != nil {
			return score.Event{}, err
		}
	}

	return score.Event{
		Type:      row.EventType,
		Side:      row.Side,
		CreatedAt: row.CreatedAt,
		Fields:    fields,
	}, nil
}
