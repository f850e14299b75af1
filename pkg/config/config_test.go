package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
environment: test
tokens:
  - name: BTC
    source: coingecko
    key: bitcoin
  - name: ETH
    source: binance
    key: ETHUSDT
scan:
  lookback_days: 120
  workers: 2
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scan.Workers != 2 || cfg.Scan.LookbackDays != 120 {
		t.Fatalf("scan overrides not applied: %+v", cfg.Scan)
	}
	if cfg.Indicators.RSIWindow != 14 || cfg.Indicators.EMALong != 26 {
		t.Fatalf("indicator defaults missing: %+v", cfg.Indicators)
	}
	if cfg.Scoring.BuyThreshold != 66 || cfg.Scoring.RSISellOverride {
		t.Fatalf("scoring defaults missing: %+v", cfg.Scoring)
	}
	if cfg.Server.Port != 8080 || cfg.Scan.Cron == "" {
		t.Fatalf("server defaults missing")
	}
	if len(cfg.Tokens) != 2 || cfg.Tokens[0].Name != "BTC" {
		t.Fatalf("tokens = %+v", cfg.Tokens)
	}
}

func TestLoadRejectsEmptyTokens(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: test\n")); err == nil {
		t.Fatalf("expected validation error for missing tokens")
	}
}

func TestLoadRejectsShortLookback(t *testing.T) {
	body := validYAML + "\nindicators:\n  rsi_window: 14\n"
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.Scan.LookbackDays = 10
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error when lookback is below the indicator minimum")
	}
}

func TestLoadRejectsInvertedEMAs(t *testing.T) {
	body := validYAML + "\nindicators:\n  ema_short: 26\n  ema_long: 12\n"
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected error for ema_short >= ema_long")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SCAN_CRON", "30 7 * * *")

	cfg, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "k1:9092" {
		t.Fatalf("brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Scan.Cron != "30 7 * * *" {
		t.Fatalf("cron = %q", cfg.Scan.Cron)
	}
}
