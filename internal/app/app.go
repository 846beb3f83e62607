package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/HeXi037/cross-sport-tracker/external/trackerapi"
	"github.com/HeXi037/cross-sport-tracker/internal/config"
	"github.com/HeXi037/cross-sport-tracker/internal/infrastructure/repository/postgres"
	"github.com/HeXi037/cross-sport-tracker/internal/interfaces/httpapi"
	"github.com/HeXi037/cross-sport-tracker/internal/platform/cache"
	"github.com/HeXi037/cross-sport-tracker/internal/platform/logging"
	"github.com/HeXi037/cross-sport-tracker/internal/usecase"
)

// NewHTTPServer wires the gateway: upstream client, reconciler services,
// optional archive and the HTTP router. The returned cleanup stops the
// live watchers and closes the archive connection.
func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, func(context.Context) error, error) {
	platformLogger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(platformLogger)

	client := trackerapi.NewClient(trackerapi.ClientConfig{
		BaseURL:    cfg.TrackerBaseURL,
		Token:      cfg.TrackerToken,
		Timeout:    cfg.TrackerTimeout,
		MaxRetries: cfg.TrackerMaxRetries,
		Logger:     platformLogger,
		CircuitBreaker: trackerapi.CircuitBreakerConfig{
			Enabled:          cfg.TrackerCircuitEnabled,
			FailureThreshold: cfg.TrackerCircuitFailureCount,
			OpenTimeout:      cfg.TrackerCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.TrackerCircuitHalfOpenMaxReq,
		},
	})

	liveFeed := trackerapi.NewLiveFeed(trackerapi.LiveFeedConfig{
		BaseURL:           cfg.TrackerBaseURL,
		Token:             cfg.TrackerToken,
		Logger:            platformLogger,
		PollInterval:      cfg.LivePollInterval,
		ReconnectInterval: cfg.LiveReconnectInterval,
		PollTimeout:       cfg.LivePollTimeout,
	})

	var db *sqlx.DB
	var feedArchiver usecase.FeedArchiver
	var eventArchiver usecase.EventArchiver
	var eventHistory usecase.EventLister
	if cfg.ArchiveEnabled {
		opened, err := otelsqlx.Connect("postgres", cfg.DBURL,
			otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
			otelsql.WithDBName("cross_sport_tracker"),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connect archive db: %w", err)
		}
		db = opened
		archive := postgres.NewArchiveRepository(db)
		feedArchiver = archive
		eventArchiver = archive
		eventHistory = archive
	}

	feedSvc := usecase.NewFeedService(client, usecase.FeedServiceOptions{
		PageSize:      cfg.FeedPageSize,
		FetchDeadline: cfg.FeedFetchDeadline,
		Archive:       feedArchiver,
		Logger:        platformLogger,
	})

	liveSvc, err := usecase.NewLiveService(liveFeed, usecase.LiveServiceOptions{
		PoolSize: cfg.LiveWatcherPoolSize,
		Archive:  eventArchiver,
		History:  eventHistory,
		Logger:   platformLogger,
	})
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, nil, fmt.Errorf("build live service: %w", err)
	}

	store := cache.NewStore(cfg.CacheTTL)
	referenceSvc := usecase.NewReferenceService(client, store)
	leaderboardSvc := usecase.NewLeaderboardService(client, store)
	tournamentSvc := usecase.NewTournamentService(client)

	handler := httpapi.NewHandler(feedSvc, liveSvc, referenceSvc, leaderboardSvc, tournamentSvc, platformLogger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		liveSvc.Close()
		if db != nil {
			_ = db.Close()
		}
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	cleanup := func(context.Context) error {
		liveSvc.Close()
		if db != nil {
			if err := db.Close(); err != nil {
				return fmt.Errorf("close archive db: %w", err)
			}
		}
		return platformLogger.Sync()
	}

	return server, cleanup, nil
}
