package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "planner.yaml")
	body := `
maxWalkingMinutes: 12
mergeBudgetMinutes: 20
redisUrl: redis://localhost:6379/0
redisCacheTtl: 6h
google:
  apiKey: from-file
  timeoutSeconds: 4.5
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GOOGLE_PLACES_API_KEY", "from-env")
	t.Setenv("MAX_WALKING_MINUTES", "9")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxWalkingMinutes != 9 {
		t.Fatalf("env must override file, got %d", cfg.MaxWalkingMinutes)
	}
	if cfg.MergeBudgetMinutes != 20 {
		t.Fatalf("unexpected merge budget %d", cfg.MergeBudgetMinutes)
	}
	if cfg.Google.APIKey != "from-env" {
		t.Fatalf("unexpected api key %q", cfg.Google.APIKey)
	}
	if got := cfg.GoogleTimeout(); got != 4500*time.Millisecond {
		t.Fatalf("unexpected timeout %v", got)
	}
	if got := cfg.CacheTTL(); got != 6*time.Hour {
		t.Fatalf("unexpected ttl %v", got)
	}
}

func TestLoadNoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.GoogleTimeout(); got != 10*time.Second {
		t.Fatalf("unexpected default timeout %v", got)
	}
	if got := cfg.CacheTTL(); got != 0 {
		t.Fatalf("unexpected default ttl %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCacheTTLBadValue(t *testing.T) {
	cfg := Config{RedisCacheTTL: "not-a-duration"}
	if got := cfg.CacheTTL(); got != 0 {
		t.Fatalf("bad duration must fall back to zero, got %v", got)
	}
}
