package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/HeXi037/cross-sport-tracker/internal/usecase"
)

// GetLiveScore starts watching the match if needed and returns the
// reconciled live view.
func (h *Handler) GetLiveScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLiveScore")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if matchID == "" {
		writeError(ctx, w, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput))
		return
	}

	view, err := h.liveService.Watch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "live watch failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, liveViewToDTO(view))
}

// GetMatchEvents replays the archived event tail for a match in append
// order. An optional limit query parameter caps the replay length.
func (h *Handler) GetMatchEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchEvents")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if matchID == "" {
		writeError(ctx, w, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput))
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	events, err := h.liveService.History(ctx, matchID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "event replay failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]matchEventDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, matchEventToDTO(ev))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

// StopLiveScore stops the watcher for a match and drops its state.
func (h *Handler) StopLiveScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StopLiveScore")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if matchID == "" {
		writeError(ctx, w, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput))
		return
	}

	h.liveService.Unwatch(matchID)
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "stopped"})
}
