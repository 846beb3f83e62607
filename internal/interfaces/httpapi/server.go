package httpapi

import (
	"log/slog"
	"net/http"
)

func NewRouter(
	handler *Handler,
	logger *slog.Logger,
	corsAllowedOrigins []string,
) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerFeedRoutes(mux, handler)
	registerLiveRoutes(mux, handler)
	registerReferenceRoutes(mux, handler)
	registerTournamentRoutes(mux, handler)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /readyz", handler.Readyz)
}

func registerFeedRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v0/feed", handler.GetFeed)
	mux.HandleFunc("POST /v0/feed/refresh", handler.RefreshFeed)
	mux.HandleFunc("POST /v0/feed/more", handler.LoadMoreFeed)
}

func registerLiveRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v0/matches/{matchID}/live", handler.GetLiveScore)
	mux.HandleFunc("DELETE /v0/matches/{matchID}/live", handler.StopLiveScore)
	mux.HandleFunc("GET /v0/matches/{matchID}/events", handler.GetMatchEvents)
}

func registerReferenceRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v0/reference", handler.GetReferenceOverview)
	mux.HandleFunc("POST /v0/reference/refresh", handler.RefreshReference)
	mux.HandleFunc("GET /v0/players", handler.ListPlayers)
	mux.HandleFunc("GET /v0/sports", handler.ListSports)
	mux.HandleFunc("GET /v0/leaderboards", handler.ListLeaderboard)
}

func registerTournamentRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v0/tournaments", handler.CreateTournament)
	mux.HandleFunc("GET /v0/tournaments/{tournamentID}", handler.GetTournament)
	mux.HandleFunc("PATCH /v0/tournaments/{tournamentID}", handler.UpdateTournament)
	mux.HandleFunc("DELETE /v0/tournaments/{tournamentID}", handler.DeleteTournament)
}

func recoverPanic(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
