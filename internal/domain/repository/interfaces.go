package repository

import (
	"context"
	"time"

	"TokenPulse/internal/domain/models"
)

// SourceAdapter fetches a raw price/volume series from one market-data
// provider. Implementations must return a *models.DataUnavailableError for
// anything that prevents a usable series (network error, non-2xx, malformed
// payload) rather than a partial result.
type SourceAdapter interface {
	Name() string
	FetchSeries(ctx context.Context, key string, interval Interval, lookback int) (*models.PriceSeries, error)
}

// SignalStore persists scan results and serves the signal history.
type SignalStore interface {
	Init(ctx context.Context) error // ensure tables exist
	SaveRun(ctx context.Context, result *models.ScanResult) error
	History(ctx context.Context, token string, from, to time.Time, limit int) ([]models.SignalRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// AlertPublisher fans BUY records out to an external alerting sink. It is
// only invoked when a scan produced at least one BUY.
type AlertPublisher interface {
	PublishBuys(ctx context.Context, result *models.ScanResult) error
	Close() error
}

// Metrics records scan-level observability signals.
type Metrics interface {
	RecordScan(seconds float64)
	RecordTokenError(kind string)
	RecordConfidence(token string, confidence float64)
	RecordDecision(decision string)
}
