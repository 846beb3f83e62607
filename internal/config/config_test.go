package config

import (
	"strings"
	"testing"
	"time"

	"github.com/HeXi037/cross-sport-tracker/internal/platform/logging"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.AppEnv != EnvDev {
		t.Fatalf("unexpected app env: %s", cfg.AppEnv)
	}
	if cfg.ServiceName != "cross-sport-gateway" {
		t.Fatalf("unexpected service name: %s", cfg.ServiceName)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTPAddr)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
	if cfg.FeedPageSize != 25 || cfg.FeedFetchDeadline != 10*time.Second {
		t.Fatalf("unexpected feed defaults: size=%d deadline=%s", cfg.FeedPageSize, cfg.FeedFetchDeadline)
	}
	if cfg.LivePollInterval != 5*time.Second || cfg.LiveWatcherPoolSize != 64 {
		t.Fatalf("unexpected live defaults: interval=%s pool=%d", cfg.LivePollInterval, cfg.LiveWatcherPoolSize)
	}
	if !cfg.TrackerCircuitEnabled || cfg.TrackerCircuitFailureCount != 5 {
		t.Fatalf("unexpected circuit defaults: enabled=%t count=%d", cfg.TrackerCircuitEnabled, cfg.TrackerCircuitFailureCount)
	}
	if cfg.ArchiveEnabled {
		t.Fatalf("archive should default to disabled")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "PROD")
	t.Setenv("APP_LOG_LEVEL", "warn")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("FEED_PAGE_SIZE", "50")
	t.Setenv("TRACKER_MAX_RETRIES", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.AppEnv != EnvProd {
		t.Fatalf("unexpected app env: %s", cfg.AppEnv)
	}
	if cfg.LogLevel != logging.LevelWarn {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.FeedPageSize != 50 {
		t.Fatalf("unexpected feed page size: %d", cfg.FeedPageSize)
	}
	if cfg.TrackerMaxRetries != 0 {
		t.Fatalf("unexpected max retries: %d", cfg.TrackerMaxRetries)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		key     string
		value   string
		wantSub string
	}{
		{"invalid app env", "APP_ENV", "local", "invalid APP_ENV"},
		{"non-positive read timeout", "APP_READ_TIMEOUT", "0s", "APP_READ_TIMEOUT"},
		{"malformed tracker timeout", "TRACKER_TIMEOUT", "soon", "TRACKER_TIMEOUT"},
		{"negative retries", "TRACKER_MAX_RETRIES", "-1", "TRACKER_MAX_RETRIES"},
		{"zero page size", "FEED_PAGE_SIZE", "0", "FEED_PAGE_SIZE"},
		{"zero circuit threshold", "TRACKER_CIRCUIT_FAILURE_COUNT", "0", "TRACKER_CIRCUIT_FAILURE_COUNT"},
		{"archive without db url", "ARCHIVE_ENABLED", "true", "DB_URL"},
		{"uptrace without dsn", "UPTRACE_ENABLED", "true", "UPTRACE_DSN"},
		{"pyroscope without address", "PYROSCOPE_ENABLED", "true", "PYROSCOPE_SERVER_ADDRESS"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
