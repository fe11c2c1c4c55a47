package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "JOIN_CODE_ATTEMPTS", "PUBLIC_SESSIONS_CACHE_TTL", "WS_PING_INTERVAL", "LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.JoinCodeAttempts != 5 || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults %#v", cfg)
	}
	if cfg.PublicSessionsTTL != 15*time.Second || cfg.WSPingInterval != 30*time.Second {
		t.Fatalf("unexpected durations %s %s", cfg.PublicSessionsTTL, cfg.WSPingInterval)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("expected no database by default, got %q", cfg.DatabaseURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PUBLIC_SESSIONS_CACHE_TTL", "2s")
	t.Setenv("JOIN_CODE_ATTEMPTS", "8")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9000" || cfg.PublicSessionsTTL != 2*time.Second || cfg.JoinCodeAttempts != 8 {
		t.Fatalf("overrides not applied: %#v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("expected two origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("JOIN_CODE_ATTEMPTS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected zero attempts to be rejected")
	}
	t.Setenv("JOIN_CODE_ATTEMPTS", "five")
	if _, err := Load(); err == nil {
		t.Fatalf("expected non-numeric attempts to be rejected")
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("YACHT_TEST_FROM_FILE=file\nYACHT_TEST_EXISTING=file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("YACHT_TEST_EXISTING", "process")
	t.Setenv("YACHT_TEST_FROM_FILE", "")
	os.Unsetenv("YACHT_TEST_FROM_FILE")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("YACHT_TEST_FROM_FILE"); got != "file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("YACHT_TEST_EXISTING"); got != "process" {
		t.Fatalf("expected process value to win, got %q", got)
	}
}
