package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the ads assistant service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	SessionIdleTimeout time.Duration
	ContextIdleWindow  time.Duration
	HistoryLimit       int

	AcceptToken             string
	DefaultDailyBudgetCents int64
	AdminUserIDs            []string

	DatabaseURL   string
	CatalogDBPath string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:                envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:        envOrDefault("APP_METRICS_NAMESPACE", "adpilot"),
		AllowAnyOrigin:          false,
		AcceptToken:             envOrDefault("APP_CONFIRM_ACCEPT_TOKEN", "yes"),
		AdminUserIDs:            splitList(stringsTrimSpace("APP_ADMIN_USER_IDS")),
		DatabaseURL:             stringsTrimSpace("DATABASE_URL"),
		CatalogDBPath:           stringsTrimSpace("CATALOG_DB_PATH"),
		DefaultDailyBudgetCents: 5000,
		HistoryLimit:            20,
		ShutdownTimeout:         15 * time.Second,
		SessionIdleTimeout:      30 * time.Minute,
		ContextIdleWindow:       30 * time.Minute,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionIdleTimeout, err = durationFromEnv("APP_SESSION_IDLE_TIMEOUT", cfg.SessionIdleTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ContextIdleWindow, err = durationFromEnv("APP_CONTEXT_IDLE_WINDOW", cfg.ContextIdleWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.HistoryLimit, err = intFromEnv("APP_HISTORY_LIMIT", cfg.HistoryLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	budget, err := intFromEnv("APP_DEFAULT_DAILY_BUDGET_CENTS", int(cfg.DefaultDailyBudgetCents))
	if err != nil {
		return Config{}, err
	}
	cfg.DefaultDailyBudgetCents = int64(budget)

	if cfg.SessionIdleTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_SESSION_IDLE_TIMEOUT must be at least 5s")
	}
	if cfg.ContextIdleWindow < 5*time.Second {
		return Config{}, fmt.Errorf("APP_CONTEXT_IDLE_WINDOW must be at least 5s")
	}
	if cfg.HistoryLimit <= 0 {
		return Config{}, fmt.Errorf("APP_HISTORY_LIMIT must be positive")
	}
	if cfg.DefaultDailyBudgetCents <= 0 {
		return Config{}, fmt.Errorf("APP_DEFAULT_DAILY_BUDGET_CENTS must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
