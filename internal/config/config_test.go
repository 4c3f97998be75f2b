package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":9090")
	}
	if cfg.MetricsNamespace != "adpilot" {
		t.Fatalf("MetricsNamespace = %q, want %q", cfg.MetricsNamespace, "adpilot")
	}
	if cfg.AcceptToken != "yes" {
		t.Fatalf("AcceptToken = %q, want %q", cfg.AcceptToken, "yes")
	}
	if cfg.SessionIdleTimeout != 30*time.Minute {
		t.Fatalf("SessionIdleTimeout = %v, want 30m", cfg.SessionIdleTimeout)
	}
	if cfg.HistoryLimit != 20 {
		t.Fatalf("HistoryLimit = %d, want 20", cfg.HistoryLimit)
	}
	if cfg.DefaultDailyBudgetCents != 5000 {
		t.Fatalf("DefaultDailyBudgetCents = %d, want 5000", cfg.DefaultDailyBudgetCents)
	}
	if len(cfg.AdminUserIDs) != 0 {
		t.Fatalf("AdminUserIDs = %v, want empty default", cfg.AdminUserIDs)
	}
}

func TestLoadParsesAdminList(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_ADMIN_USER_IDS", " alice , bob ,,carol")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"alice", "bob", "carol"}
	if len(cfg.AdminUserIDs) != len(want) {
		t.Fatalf("AdminUserIDs = %v, want %v", cfg.AdminUserIDs, want)
	}
	for i := range want {
		if cfg.AdminUserIDs[i] != want[i] {
			t.Fatalf("AdminUserIDs = %v, want %v", cfg.AdminUserIDs, want)
		}
	}
}

func TestLoadRejectsTinyIdleTimeout(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_SESSION_IDLE_TIMEOUT", "1s")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() should reject a 1s idle timeout")
	}
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_SHUTDOWN_TIMEOUT", "soonish")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() should reject a malformed duration")
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"APP_SESSION_IDLE_TIMEOUT",
		"APP_CONTEXT_IDLE_WINDOW",
		"APP_HISTORY_LIMIT",
		"APP_CONFIRM_ACCEPT_TOKEN",
		"APP_DEFAULT_DAILY_BUDGET_CENTS",
		"APP_ADMIN_USER_IDS",
		"DATABASE_URL",
		"CATALOG_DB_PATH",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
