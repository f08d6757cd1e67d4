package config

import "testing"

func TestLoadRequiresCoreSettings(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379",
		"JWT_SECRET":   "secret",
	})
	if err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":     "postgres://localhost/cho",
		"REDIS_URL":        "redis://localhost:6379",
		"JWT_SECRET":       "secret",
		"PORT":             "",
		"ACCESS_TOKEN_TTL": "bogus",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddr() != ":8080" {
		t.Fatalf("expected default addr :8080, got %s", cfg.HTTPAddr())
	}
	if cfg.AccessTokenTTL.Minutes() != 15 {
		t.Fatalf("expected fallback access TTL 15m, got %s", cfg.AccessTokenTTL)
	}
	if cfg.LoginRateLimit != "10-M" {
		t.Fatalf("expected default login rate limit, got %s", cfg.LoginRateLimit)
	}
}
