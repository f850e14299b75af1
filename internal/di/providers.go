package di

import (
	"context"
	"fmt"
	"time"

	drepo "TokenPulse/internal/domain/repository"
	"TokenPulse/internal/handler/api"
	internalrepo "TokenPulse/internal/repository"
	"TokenPulse/internal/service/cache"
	"TokenPulse/internal/service/marketdata"
	"TokenPulse/internal/usecase"
	pkgch "TokenPulse/pkg/clickhouse"
	"TokenPulse/pkg/config"
	xhttp "TokenPulse/pkg/http"
	pkgkafka "TokenPulse/pkg/kafka"
	applogger "TokenPulse/pkg/logger"
	"TokenPulse/pkg/metrics"
	"TokenPulse/pkg/server"
)

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideSeriesCache selects Redis or the in-process cache.
func ProvideSeriesCache(cfg *config.Config) cache.BytesCache {
	if cfg.Cache.Enabled {
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
	}
	return cache.NewTTLCache()
}

// ProvideAdapters creates the cached source adapters, one per provider.
func ProvideAdapters(cfg *config.Config, store cache.BytesCache, l *applogger.Logger) []drepo.SourceAdapter {
	client := xhttp.NewClient(xhttp.WithTimeout(cfg.Sources.Timeout))

	gecko := marketdata.NewCoinGecko(cfg.Sources.CoinGecko.BaseURL, client,
		cfg.Sources.CoinGecko.RPS, cfg.Sources.CoinGecko.Burst)
	binance := marketdata.NewBinance(cfg.Sources.Binance.BaseURL, client,
		cfg.Sources.Binance.RPS, cfg.Sources.Binance.Burst)

	return []drepo.SourceAdapter{
		marketdata.NewCachedAdapter(gecko, store, cfg.Cache.TTL, l),
		marketdata.NewCachedAdapter(binance, store, cfg.Cache.TTL, l),
	}
}

// ProvideSignalStore creates the ClickHouse-backed store, or nil when
// persistence is disabled.
func ProvideSignalStore(cfg *config.Config, l *applogger.Logger) (drepo.SignalStore, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	store := internalrepo.NewCHSignalStore(client, l)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideAlertPublisher creates the Kafka-backed publisher, or nil when
// alerting is disabled.
func ProvideAlertPublisher(cfg *config.Config, l *applogger.Logger) (drepo.AlertPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.Topic, l), nil
}

// ProvideRunner assembles the scanner and the run orchestration around it.
func ProvideRunner(cfg *config.Config, adapters []drepo.SourceAdapter, store drepo.SignalStore, alerts drepo.AlertPublisher, m drepo.Metrics, l *applogger.Logger) *usecase.ScanRunner {
	scanner := usecase.NewScanner(adapters, usecase.ScannerConfig{
		Interval:     drepo.NormalizeInterval(cfg.Scan.Interval),
		Lookback:     cfg.Scan.LookbackDays,
		Workers:      cfg.Scan.Workers,
		FetchTimeout: cfg.Scan.FetchTimeout,
		Indicators:   cfg.Indicators,
		Rules:        cfg.Scoring,
	}, l, m)

	tokens := make([]usecase.TokenSpec, 0, len(cfg.Tokens))
	for _, t := range cfg.Tokens {
		tokens = append(tokens, usecase.TokenSpec{Name: t.Name, Source: t.Source, Key: t.Key})
	}

	return usecase.NewScanRunner(scanner, tokens, store, alerts, m, l)
}

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config, l *applogger.Logger) (*server.App, error) {
	m := ProvideMetrics()
	seriesCache := ProvideSeriesCache(cfg)
	adapters := ProvideAdapters(cfg, seriesCache, l)

	store, err := ProvideSignalStore(cfg, l)
	if err != nil {
		return nil, err
	}
	alerts, err := ProvideAlertPublisher(cfg, l)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}

	runner := ProvideRunner(cfg, adapters, store, alerts, m, l)
	handler := api.NewSignalsHandler(l, runner, store)

	return server.New(cfg, l, runner, handler, store, alerts), nil
}
