package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/HeXi037/cross-sport-tracker/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the gateway.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	LogLevel       logging.Level

	CORSAllowedOrigins []string

	TrackerBaseURL               string
	TrackerToken                 string
	TrackerTimeout               time.Duration
	TrackerMaxRetries            int
	TrackerCircuitEnabled        bool
	TrackerCircuitFailureCount   int
	TrackerCircuitOpenTimeout    time.Duration
	TrackerCircuitHalfOpenMaxReq int

	FeedPageSize      int
	FeedFetchDeadline time.Duration

	LivePollInterval      time.Duration
	LiveReconnectInterval time.Duration
	LivePollTimeout       time.Duration
	LiveWatcherPoolSize   int

	CacheTTL time.Duration

	ArchiveEnabled bool
	DBURL          string

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	if readTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_READ_TIMEOUT must be > 0")
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}
	if writeTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_WRITE_TIMEOUT must be > 0")
	}

	trackerTimeout, err := time.ParseDuration(getEnv("TRACKER_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TRACKER_TIMEOUT: %w", err)
	}
	if trackerTimeout <= 0 {
		return Config{}, fmt.Errorf("TRACKER_TIMEOUT must be > 0")
	}
	trackerMaxRetries, err := getEnvAsInt("TRACKER_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse TRACKER_MAX_RETRIES: %w", err)
	}
	if trackerMaxRetries < 0 {
		return Config{}, fmt.Errorf("TRACKER_MAX_RETRIES must be >= 0")
	}
	trackerCircuitEnabled, err := strconv.ParseBool(getEnv("TRACKER_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TRACKER_CIRCUIT_ENABLED: %w", err)
	}
	trackerCircuitFailureCount, err := getEnvAsInt("TRACKER_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse TRACKER_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if trackerCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("TRACKER_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	trackerCircuitOpenTimeout, err := time.ParseDuration(getEnv("TRACKER_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TRACKER_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if trackerCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("TRACKER_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	trackerCircuitHalfOpenMaxReq, err := getEnvAsInt("TRACKER_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse TRACKER_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if trackerCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("TRACKER_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	feedPageSize, err := getEnvAsInt("FEED_PAGE_SIZE", 25)
	if err != nil {
		return Config{}, fmt.Errorf("parse FEED_PAGE_SIZE: %w", err)
	}
	if feedPageSize < 1 {
		return Config{}, fmt.Errorf("FEED_PAGE_SIZE must be >= 1")
	}
	feedFetchDeadline, err := time.ParseDuration(getEnv("FEED_FETCH_DEADLINE", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FEED_FETCH_DEADLINE: %w", err)
	}
	if feedFetchDeadline <= 0 {
		return Config{}, fmt.Errorf("FEED_FETCH_DEADLINE must be > 0")
	}

	livePollInterval, err := time.ParseDuration(getEnv("LIVE_POLL_INTERVAL", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LIVE_POLL_INTERVAL: %w", err)
	}
	if livePollInterval <= 0 {
		return Config{}, fmt.Errorf("LIVE_POLL_INTERVAL must be > 0")
	}
	liveReconnectInterval, err := time.ParseDuration(getEnv("LIVE_RECONNECT_INTERVAL", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LIVE_RECONNECT_INTERVAL: %w", err)
	}
	if liveReconnectInterval <= 0 {
		return Config{}, fmt.Errorf("LIVE_RECONNECT_INTERVAL must be > 0")
	}
	livePollTimeout, err := time.ParseDuration(getEnv("LIVE_POLL_TIMEOUT", "4s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LIVE_POLL_TIMEOUT: %w", err)
	}
	if livePollTimeout <= 0 {
		return Config{}, fmt.Errorf("LIVE_POLL_TIMEOUT must be > 0")
	}
	liveWatcherPoolSize, err := getEnvAsInt("LIVE_WATCHER_POOL_SIZE", 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse LIVE_WATCHER_POOL_SIZE: %w", err)
	}
	if liveWatcherPoolSize < 1 {
		return Config{}, fmt.Errorf("LIVE_WATCHER_POOL_SIZE must be >= 1")
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	archiveEnabled, err := strconv.ParseBool(getEnv("ARCHIVE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ARCHIVE_ENABLED: %w", err)
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if archiveEnabled && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when ARCHIVE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	serviceName := getEnv("APP_SERVICE_NAME", "cross-sport-gateway")

	return Config{
		AppEnv:         appEnv,
		ServiceName:    serviceName,
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:       getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		LogLevel:       parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		TrackerBaseURL:               getEnv("TRACKER_BASE_URL", "http://localhost:8000/api"),
		TrackerToken:                 strings.TrimSpace(getEnv("TRACKER_TOKEN", "")),
		TrackerTimeout:               trackerTimeout,
		TrackerMaxRetries:            trackerMaxRetries,
		TrackerCircuitEnabled:        trackerCircuitEnabled,
		TrackerCircuitFailureCount:   trackerCircuitFailureCount,
		TrackerCircuitOpenTimeout:    trackerCircuitOpenTimeout,
		TrackerCircuitHalfOpenMaxReq: trackerCircuitHalfOpenMaxReq,

		FeedPageSize:      feedPageSize,
		FeedFetchDeadline: feedFetchDeadline,

		LivePollInterval:      livePollInterval,
		LiveReconnectInterval: liveReconnectInterval,
		LivePollTimeout:       livePollTimeout,
		LiveWatcherPoolSize:   liveWatcherPoolSize,

		CacheTTL: cacheTTL,

		ArchiveEnabled: archiveEnabled,
		DBURL:          dbURL,

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:       pyroscopeEnabled,
		PyroscopeServerAddress: pyroscopeServerAddress,
		PyroscopeAppName:       getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:     strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:    pyroscopeUploadRate,
	}, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
