package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BASE_ENDPOINT", " https://api.example.com ")
	t.Setenv("STORAGE_TYPE", "SQLite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseEndpoint != "https://api.example.com" {
		t.Fatalf("unexpected base endpoint %q", cfg.BaseEndpoint)
	}
	if cfg.StorageType != "sqlite" {
		t.Fatalf("unexpected storage type %q", cfg.StorageType)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("unexpected http timeout %v", cfg.HTTPTimeout)
	}
	if cfg.ConnectivityTimeout != 2*time.Second || cfg.ConnectivityCache != 5*time.Second {
		t.Fatalf("unexpected connectivity durations %v %v", cfg.ConnectivityTimeout, cfg.ConnectivityCache)
	}
	if cfg.OAuth2Enabled() {
		t.Fatalf("oauth2 should be disabled by default")
	}
}

func TestLoadRejectsInvalidTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero http timeout")
	}
}

func TestNormalizeRequiresOAuth2ClientID(t *testing.T) {
	cfg := Config{
		HTTPTimeoutSeconds:    1,
		ConnectivityTimeoutMs: 1,
		OAuth2TokenURL:        "https://auth.example.com/token",
	}
	if err := cfg.normalize(); err == nil {
		t.Fatalf("expected error when client id missing")
	}
}
