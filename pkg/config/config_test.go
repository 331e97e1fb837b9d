package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
environment: test
server:
  port: 9090
  read_timeout: 5s
  write_timeout: 5s
  shutdown_timeout: 5s
logging:
  level: debug
  format: json
  output: stdout
market_data:
  base_url: https://example.test/api/v1
  api_key: secret
  timeout: 10s
  history_window: 40
model:
  staleness: 2h
  training_window: 30
  training_timeout: 8s
  sweep_schedule: "0 * * * *"
signal_cache:
  enabled: true
  ttl: 5m
rate_limit:
  enabled: true
  rps: 5
  burst: 10
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Environment != "test" {
		t.Fatalf("environment = %q", cfg.Environment)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Model.Staleness != 2*time.Hour {
		t.Fatalf("staleness = %v", cfg.Model.Staleness)
	}
	if cfg.RateLimit.RPS != 5 {
		t.Fatalf("rps = %v", cfg.RateLimit.RPS)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("MARKET_DATA_API_KEY", "from-env")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}

	if cfg.MarketData.APIKey != "from-env" {
		t.Fatalf("api key = %q", cfg.MarketData.APIKey)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if !cfg.SignalCache.Redis.Enabled || cfg.SignalCache.Redis.Addr != "redis:6379" {
		t.Fatalf("redis override not applied: %+v", cfg.SignalCache.Redis)
	}
}

func TestValidateMissingEnvironment(t *testing.T) {
	_, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestValidateMissingBaseURL(t *testing.T) {
	yaml := `
environment: test
server:
  port: 8080
`
	_, err := Load(writeConfig(t, yaml))
	if err == nil {
		t.Fatal("expected validation error for missing base_url")
	}
}
