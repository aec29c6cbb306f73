package app

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("KG_CONFIG_FILE", "")
	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.KG.MaxAttempts != 3 || cfg.KG.InitialBackoff != 500*time.Millisecond || cfg.KG.MaxBackoff != 2*time.Second {
		t.Fatalf("reconcile defaults: %+v", cfg.KG)
	}
	if cfg.KG.DeleteTimeout != 60*time.Second || cfg.KG.Concurrency != 4 {
		t.Fatalf("delete defaults: %+v", cfg.KG)
	}
	if cfg.Redis.Channel != "kg-events" {
		t.Fatalf("redis channel default: %q", cfg.Redis.Channel)
	}
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kg.yaml")
	body := `
port: "9090"
cors_origins: ["https://aura.example"]
kg:
  concurrency: 8
  status_max_attempts: 5
  status_initial_backoff: 250ms
redis:
  addr: redis:6379
otel:
  enabled: true
  sample_ratio: 0.5
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("KG_CONFIG_FILE", path)
	t.Setenv("KG_DELETE_CONCURRENCY", "2")
	t.Setenv("KG_STATUS_MAX_BACKOFF", "3s")

	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "9090" || !reflect.DeepEqual(cfg.CORSOrigins, []string{"https://aura.example"}) {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.KG.Concurrency != 2 {
		t.Fatalf("env should override file: concurrency=%d", cfg.KG.Concurrency)
	}
	if cfg.KG.MaxAttempts != 5 || cfg.KG.InitialBackoff != 250*time.Millisecond || cfg.KG.MaxBackoff != 3*time.Second {
		t.Fatalf("reconcile config: %+v", cfg.KG)
	}
	if cfg.KG.DeleteTimeout != 60*time.Second {
		t.Fatalf("unset keys keep defaults: %v", cfg.KG.DeleteTimeout)
	}
	if cfg.Redis.Addr != "redis:6379" || !cfg.Otel.Enabled || cfg.Otel.SampleRatio != 0.5 {
		t.Fatalf("nested values: %+v %+v", cfg.Redis, cfg.Otel)
	}

	kg := cfg.kgcleanupConfig()
	if kg.Concurrency != 2 || kg.Reconcile.MaxAttempts != 5 {
		t.Fatalf("kgcleanup config: %+v", kg)
	}
}

func TestLoadConfigBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("kg: [unclosed"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("KG_CONFIG_FILE", path)
	if _, err := LoadConfig(nil); err == nil {
		t.Fatalf("expected parse error")
	}

	t.Setenv("KG_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := LoadConfig(nil); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("KG_CONFIG_FILE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Fatalf("origins: want %v got %v", want, cfg.CORSOrigins)
	}
}
