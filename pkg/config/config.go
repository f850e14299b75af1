package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"TokenPulse/internal/services/indicators"
	"TokenPulse/internal/services/scoring"
)

// TokenConfig names one token of the scan universe and where to fetch it.
type TokenConfig struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Key    string `yaml:"key"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Scan struct {
		Interval     string        `yaml:"interval"`
		LookbackDays int           `yaml:"lookback_days"`
		Workers      int           `yaml:"workers"`
		FetchTimeout time.Duration `yaml:"fetch_timeout"`
		Cron         string        `yaml:"cron"`
		RunOnStart   bool          `yaml:"run_on_start"`
	} `yaml:"scan"`
	Tokens     []TokenConfig     `yaml:"tokens"`
	Indicators indicators.Config `yaml:"indicators"`
	Scoring    scoring.Rules     `yaml:"scoring"`
	Sources    struct {
		CoinGecko struct {
			BaseURL string  `yaml:"base_url"`
			RPS     float64 `yaml:"rps"`
			Burst   int     `yaml:"burst"`
		} `yaml:"coingecko"`
		Binance struct {
			BaseURL string  `yaml:"base_url"`
			RPS     float64 `yaml:"rps"`
			Burst   int     `yaml:"burst"`
		} `yaml:"binance"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"sources"`
	Cache struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"kafka"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := defaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Addr = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		c.Scan.Cron = v
	}

	return c, nil
}

func defaultConfig() *Config {
	c := &Config{}
	c.Environment = "development"
	c.Log.Level = "info"
	c.Log.Format = "json"
	c.Log.Output = "stdout"
	c.Server.Port = 8080
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 10 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"
	c.Scan.Interval = "1d"
	c.Scan.LookbackDays = 365
	c.Scan.Workers = 4
	c.Scan.FetchTimeout = 30 * time.Second
	c.Scan.Cron = "0 6 * * *"
	c.Indicators = indicators.DefaultConfig()
	c.Scoring = scoring.DefaultRules()
	c.Sources.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	c.Sources.CoinGecko.RPS = 0.5
	c.Sources.CoinGecko.Burst = 2
	c.Sources.Binance.BaseURL = "https://api.binance.com"
	c.Sources.Binance.RPS = 5
	c.Sources.Binance.Burst = 10
	c.Sources.Timeout = 15 * time.Second
	c.Cache.TTL = 10 * time.Minute
	c.ClickHouse.Port = 9000
	c.ClickHouse.Database = "default"
	c.ClickHouse.User = "default"
	c.ClickHouse.DialTimeout = 5 * time.Second
	c.ClickHouse.ReadTimeout = 30 * time.Second
	c.ClickHouse.WriteTimeout = 30 * time.Second
	c.Kafka.Topic = "tokenpulse.buy-signals"
	c.Kafka.RequiredAcks = 1
	c.Kafka.WriteTimeout = 10 * time.Second
	return c
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Tokens) == 0 {
		return fmt.Errorf("tokens cannot be empty")
	}
	for i, t := range c.Tokens {
		if t.Name == "" || t.Source == "" || t.Key == "" {
			return fmt.Errorf("tokens[%d]: name, source, and key are required", i)
		}
	}
	if c.Scan.Workers <= 0 {
		return fmt.Errorf("scan.workers must be positive")
	}
	if c.Scan.LookbackDays < c.Indicators.MinHistory() {
		return fmt.Errorf("scan.lookback_days %d is below the %d points indicators need",
			c.Scan.LookbackDays, c.Indicators.MinHistory())
	}
	if c.Indicators.EMAShort >= c.Indicators.EMALong {
		return fmt.Errorf("indicators.ema_short must be below indicators.ema_long")
	}
	if c.Indicators.RSIWindow <= 0 || c.Indicators.BollWindow <= 0 {
		return fmt.Errorf("indicator windows must be positive")
	}
	if c.Scoring.BuyThreshold <= c.Scoring.MaybeThreshold {
		return fmt.Errorf("scoring.buy_threshold must exceed scoring.maybe_threshold")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	if c.Cache.Enabled && c.Cache.Addr == "" {
		return fmt.Errorf("cache.addr is required when cache is enabled")
	}
	return nil
}
