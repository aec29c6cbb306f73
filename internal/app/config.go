package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/md-ibu786/AURA-PROTO-sub001/internal/modules/kgcleanup"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/observability"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/envutil"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/logger"
)

type Config struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`

	KG    KGConfig    `yaml:"kg"`
	Redis RedisConfig `yaml:"redis"`
	Otel  OtelConfig  `yaml:"otel"`
}

type KGConfig struct {
	DeleteTimeout    time.Duration `yaml:"delete_timeout"`
	Concurrency      int           `yaml:"concurrency"`
	MaxAttempts      int           `yaml:"status_max_attempts"`
	InitialBackoff   time.Duration `yaml:"status_initial_backoff"`
	MaxBackoff       time.Duration `yaml:"status_max_backoff"`
	ReconcileTimeout time.Duration `yaml:"reconcile_timeout"`
	CleanupTimeout   time.Duration `yaml:"cleanup_timeout"`
}

type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Environment string  `yaml:"environment"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

func defaultConfig() Config {
	kg := kgcleanup.DefaultConfig()
	return Config{
		Port: "8080",
		KG: KGConfig{
			DeleteTimeout:    60 * time.Second,
			Concurrency:      kg.Concurrency,
			MaxAttempts:      kg.Reconcile.MaxAttempts,
			InitialBackoff:   kg.Reconcile.InitialBackoff,
			MaxBackoff:       kg.Reconcile.MaxBackoff,
			ReconcileTimeout: kg.ReconcileTimeout,
			CleanupTimeout:   kg.CleanupTimeout,
		},
		Redis: RedisConfig{Channel: "kg-events"},
		Otel:  OtelConfig{ServiceName: "aura-kg", SampleRatio: 1},
	}
}

// LoadConfig layers defaults, the optional KG_CONFIG_FILE YAML overlay and
// environment variables, in that order.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()
	if path := strings.TrimSpace(os.Getenv("KG_CONFIG_FILE")); path != "" {
		if err := applyConfigFile(&cfg, path); err != nil {
			return Config{}, err
		}
		if log != nil {
			log.Info("config file loaded", "path", path)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyConfigFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envutil.String("PORT", cfg.Port)
	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	cfg.KG.DeleteTimeout = envutil.Duration("KG_DELETE_TIMEOUT", cfg.KG.DeleteTimeout)
	cfg.KG.Concurrency = envutil.Int("KG_DELETE_CONCURRENCY", cfg.KG.Concurrency)
	cfg.KG.MaxAttempts = envutil.Int("KG_STATUS_MAX_ATTEMPTS", cfg.KG.MaxAttempts)
	cfg.KG.InitialBackoff = envutil.Duration("KG_STATUS_INITIAL_BACKOFF", cfg.KG.InitialBackoff)
	cfg.KG.MaxBackoff = envutil.Duration("KG_STATUS_MAX_BACKOFF", cfg.KG.MaxBackoff)
	cfg.KG.ReconcileTimeout = envutil.Duration("KG_RECONCILE_TIMEOUT", cfg.KG.ReconcileTimeout)
	cfg.KG.CleanupTimeout = envutil.Duration("KG_CLEANUP_TIMEOUT", cfg.KG.CleanupTimeout)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Channel = envutil.String("REDIS_CHANNEL", cfg.Redis.Channel)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", cfg.Otel.Environment)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) kgcleanupConfig() kgcleanup.Config {
	out := kgcleanup.DefaultConfig()
	out.Concurrency = c.KG.Concurrency
	out.ReconcileTimeout = c.KG.ReconcileTimeout
	out.CleanupTimeout = c.KG.CleanupTimeout
	out.Reconcile = kgcleanup.ReconcilerConfig{
		MaxAttempts:    c.KG.MaxAttempts,
		InitialBackoff: c.KG.InitialBackoff,
		MaxBackoff:     c.KG.MaxBackoff,
	}
	return out
}

func (c Config) otelConfig(version string) observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.Otel.Enabled,
		ServiceName: c.Otel.ServiceName,
		Environment: c.Otel.Environment,
		Version:     version,
		Endpoint:    c.Otel.Endpoint,
		Headers:     observability.ParseHeaders(c.Otel.Headers),
		Insecure:    c.Otel.Insecure,
		SampleRatio: c.Otel.SampleRatio,
	}
}
