package httpapi

import (
	"net/http"
	"strings"
)

// GetFeed returns the current reconciled feed for a sport filter. A feed
// that has never been loaded is refreshed first so the initial GET does
// not return an empty shell.
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFeed")
	defer span.End()

	sportKey := strings.TrimSpace(r.URL.Query().Get("sport"))

	view := h.feedService.Snapshot(ctx, sportKey)
	if len(view.Rows) == 0 && !view.Loading {
		refreshed, err := h.feedService.Refresh(ctx, sportKey)
		if err != nil {
			h.logger.WarnContext(ctx, "feed refresh failed", "sport", sportKey, "error", err)
			writeError(ctx, w, err)
			return
		}
		view = refreshed
	}

	writeSuccess(ctx, w, http.StatusOK, feedViewToDTO(ctx, view))
}

// RefreshFeed re-fetches the first page and reconciles it with the rows
// already on display.
func (h *Handler) RefreshFeed(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshFeed")
	defer span.End()

	sportKey := strings.TrimSpace(r.URL.Query().Get("sport"))

	view, err := h.feedService.Refresh(ctx, sportKey)
	if err != nil {
		h.logger.WarnContext(ctx, "feed refresh failed", "sport", sportKey, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, feedViewToDTO(ctx, view))
}

// LoadMoreFeed extends the feed by one page. A call that races an
// in-flight load, or arrives after the last page, returns the current
// view unchanged.
func (h *Handler) LoadMoreFeed(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LoadMoreFeed")
	defer span.End()

	sportKey := strings.TrimSpace(r.URL.Query().Get("sport"))

	view, err := h.feedService.LoadMore(ctx, sportKey)
	if err != nil {
		h.logger.WarnContext(ctx, "feed load more failed", "sport", sportKey, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, feedViewToDTO(ctx, view))
}
