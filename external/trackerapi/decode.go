package trackerapi

import (
	"math"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/HeXi037/cross-sport-tracker/internal/domain/score"
	"github.com/HeXi037/cross-sport-tracker/internal/usecase"
)

// decodeLiveMessage turns one wire frame into a LiveMessage. The wire
// format is loose: summaries arrive as free-form objects, events carry
// arbitrary extra fields, and non-object summaries mean "no summary yet"
// rather than an error. Only an unparseable frame is rejected.
func decodeLiveMessage(raw []byte) (usecase.LiveMessage, error) {
	var frame map[string]any
	if err := sonic.Unmarshal(raw, &frame); err != nil {
		return usecase.LiveMessage{}, crerr.Wrap(err, "decode live frame")
	}

	msg := usecase.LiveMessage{}
	if status, ok := frame["status"].(string); ok {
		msg.Status = status
	}
	if summary, ok := frame["summary"].(map[string]any); ok {
		msg.Summary = decodeSummary(summary)
	}
	if event, ok := frame["event"].(map[string]any); ok {
		msg.Event = decodeEvent(event)
	}
	return msg, nil
}

func decodeSummary(raw map[string]any) *score.Summary {
	out := &score.Summary{
		Sets:   toTotals(raw["sets"]),
		Games:  toTotals(raw["games"]),
		Points: toTotals(raw["points"]),
		Score:  toTotals(raw["score"]),
		Totals: toTotals(raw["totals"]),
	}

	if total, ok := toNumber(raw["total"]); ok {
		out.Total = &total
	}

	sets := raw["set_scores"]
	if sets == nil {
		sets = raw["setScores"]
	}
	if list, ok := sets.([]any); ok {
		for _, item := range list {
			if entry, ok := item.(map[string]any); ok {
				set := toTotals(entry)
				if set != nil {
					out.SetScores = append(out.SetScores, score.SetScore(set))
				}
			}
		}
	}
	return out
}

func decodeEvent(raw map[string]any) *score.Event {
	event := &score.Event{Fields: make(map[string]any)}
	for key, value := range raw {
		switch key {
		case "type":
			if s, ok := value.(string); ok {
				event.Type = s
			}
		case "side":
			if s, ok := value.(string); ok {
				event.Side = s
			}
		case "createdAt", "created_at":
			if s, ok := value.(string); ok {
				if ts, err := time.Parse(time.RFC3339, s); err == nil {
					event.CreatedAt = ts
				}
			}
		default:
			event.Fields[key] = value
		}
	}
	return event
}

// toTotals coerces a decoded side->number object; anything else, side
// entries included, that is not a finite number is dropped.
func toTotals(value any) score.RunningTotals {
	raw, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	totals := make(score.RunningTotals, len(raw))
	for side, v := range raw {
		if n, ok := toNumber(v); ok {
			totals[side] = int(n)
		}
	}
	if len(totals) == 0 {
		return nil
	}
	return totals
}

func toNumber(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
