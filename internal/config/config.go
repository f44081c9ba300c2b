package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Supported history backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	HistoryBackend     string
	HistoryKey         string
	HistoryFileDir     string
	HistorySQLitePath  string
	RedisURL           string
	HistoryLockEnabled bool
	HistoryLockTTL     time.Duration
	ReportTimezone     string
	CORSAllowedOrigins []string
	SubmitRateLimit    int
	SubmitRateWindow   time.Duration
	IdempotencyTTL     time.Duration
	BodyLimitBytes     int64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		HistoryBackend:     strings.ToLower(valueOrDefault(k.String("HISTORY_BACKEND"), BackendFile)),
		HistoryKey:         valueOrDefault(k.String("HISTORY_KEY"), "reportHistory"),
		HistoryFileDir:     valueOrDefault(k.String("HISTORY_FILE_DIR"), "data"),
		HistorySQLitePath:  valueOrDefault(k.String("HISTORY_SQLITE_PATH"), "data/history.db"),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		HistoryLockEnabled: parseBool(k.String("HISTORY_LOCK_ENABLED")),
		HistoryLockTTL:     parseDuration(k.String("HISTORY_LOCK_TTL"), "5s"),
		ReportTimezone:     valueOrDefault(k.String("REPORT_TIMEZONE"), "UTC"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		SubmitRateLimit:    parseInt(k.String("SUBMIT_RATE_LIMIT"), 30),
		SubmitRateWindow:   parseDuration(k.String("SUBMIT_RATE_WINDOW"), "1m"),
		IdempotencyTTL:     parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		BodyLimitBytes:     int64(parseInt(k.String("BODY_LIMIT_BYTES"), 64<<10)),
	}

	switch cfg.HistoryBackend {
	case BackendMemory, BackendFile, BackendSQLite:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL is required for the redis history backend")
		}
	default:
		return nil, fmt.Errorf("HISTORY_BACKEND %q is not supported", cfg.HistoryBackend)
	}
	if cfg.HistoryLockEnabled && cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required when HISTORY_LOCK_ENABLED is set")
	}
	if _, err := time.LoadLocation(cfg.ReportTimezone); err != nil {
		return nil, fmt.Errorf("REPORT_TIMEZONE: %w", err)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// Location returns the time zone digest dates are rendered in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// MustLoad behaves like Load but panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
