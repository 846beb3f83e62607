package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/HeXi037/cross-sport-tracker/internal/usecase"
)

func (h *Handler) GetReferenceOverview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetReferenceOverview")
	defer span.End()

	overview, err := h.referenceService.Overview(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "reference overview failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, overviewToDTO(overview))
}

// RefreshReference drops the cached reference collections and returns a
// freshly loaded overview, so operators can force out stale data before
// the TTL runs down.
func (h *Handler) RefreshReference(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshReference")
	defer span.End()

	h.referenceService.InvalidateAll(ctx)

	overview, err := h.referenceService.Overview(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "reference refresh failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, overviewToDTO(overview))
}

func overviewToDTO(overview usecase.Overview) referenceOverviewDTO {
	players := make([]playerDTO, 0, len(overview.Players))
	for _, p := range overview.Players {
		players = append(players, playerToDTO(p))
	}
	sports := make([]sportDTO, 0, len(overview.Sports))
	for _, s := range overview.Sports {
		sports = append(sports, sportDTO{ID: s.ID, Name: s.Name})
	}
	return referenceOverviewDTO{Players: players, Sports: sports}
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	players, err := h.referenceService.ListPlayers(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]playerDTO, 0, len(players))
	for _, p := range players {
		out = append(out, playerToDTO(p))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListSports(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSports")
	defer span.End()

	sports, err := h.referenceService.ListSports(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list sports failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]sportDTO, 0, len(sports))
	for _, s := range sports {
		out = append(out, sportDTO{ID: s.ID, Name: s.Name})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeaderboard")
	defer span.End()

	sportID := strings.TrimSpace(r.URL.Query().Get("sport"))
	if sportID == "" {
		writeError(ctx, w, fmt.Errorf("%w: sport query parameter is required", usecase.ErrInvalidInput))
		return
	}

	entries, err := h.leaderboardService.ListBySport(ctx, sportID)
	if err != nil {
		h.logger.WarnContext(ctx, "list leaderboard failed", "sport", sportID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]leaderboardEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, leaderboardEntryToDTO(entry))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
