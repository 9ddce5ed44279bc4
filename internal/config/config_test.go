package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.SnapshotCacheTTL != 30*time.Minute {
		t.Errorf("SnapshotCacheTTL = %s, want 30m", cfg.SnapshotCacheTTL)
	}
	if cfg.ProviderTimeout != 15*time.Second {
		t.Errorf("ProviderTimeout = %s, want 15s", cfg.ProviderTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SNAPSHOT_CACHE_TTL", "5m")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.SnapshotCacheTTL != 5*time.Minute || cfg.AnthropicAPIKey != "sk-test" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}
