package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TokenPulse/internal/domain/models"
	"TokenPulse/internal/domain/repository"
	applogger "TokenPulse/pkg/logger"
)

// ScanRunner executes scans over the configured token universe and fans the
// results out to the optional sinks: the signal store and the alert
// publisher. It also keeps the latest result in memory for the dashboard
// API.
type ScanRunner struct {
	scanner *Scanner
	tokens  []TokenSpec
	store   repository.SignalStore    // may be nil
	alerts  repository.AlertPublisher // may be nil
	metrics repository.Metrics        // may be nil
	log     *applogger.Logger

	mu      sync.RWMutex
	latest  *models.ScanResult
	running bool
}

func NewScanRunner(scanner *Scanner, tokens []TokenSpec, store repository.SignalStore, alerts repository.AlertPublisher, metrics repository.Metrics, log *applogger.Logger) *ScanRunner {
	if log == nil {
		log = applogger.Nop()
	}
	return &ScanRunner{
		scanner: scanner,
		tokens:  tokens,
		store:   store,
		alerts:  alerts,
		metrics: metrics,
		log:     log,
	}
}

// Tokens returns the configured universe in order.
func (r *ScanRunner) Tokens() []TokenSpec { return r.tokens }

// Latest returns the most recent scan result, or nil if none has run yet.
func (r *ScanRunner) Latest() *models.ScanResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// RunOnce performs one full scan. Only one scan runs at a time; a second
// caller gets an error instead of a queued duplicate. Sink failures are
// logged, not fatal: the scan result is still returned and retained.
func (r *ScanRunner) RunOnce(ctx context.Context, only []string) (*models.ScanResult, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, fmt.Errorf("scan already in progress")
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	tokens := r.selectTokens(only)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no tokens selected")
	}

	start := time.Now()
	records := r.scanner.Scan(ctx, tokens)
	result := &models.ScanResult{
		RunID:     start.UTC().Format("20060102T150405Z"),
		StartedAt: start.UTC(),
		Duration:  time.Since(start),
		Records:   records,
	}

	if r.metrics != nil {
		r.metrics.RecordScan(result.Duration.Seconds())
	}

	failed := 0
	for i := range records {
		if records[i].Failed() {
			failed++
		}
	}
	r.log.Info("scan finished",
		applogger.String("run_id", result.RunID),
		applogger.Int("tokens", len(records)),
		applogger.Int("failed", failed),
		applogger.Duration("duration", result.Duration))

	r.mu.Lock()
	r.latest = result
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.SaveRun(ctx, result); err != nil {
			r.log.Error("saving scan result failed", applogger.Error(err))
		}
	}

	if r.alerts != nil && len(result.Buys()) > 0 {
		if err := r.alerts.PublishBuys(ctx, result); err != nil {
			r.log.Error("publishing buy alerts failed", applogger.Error(err))
		}
	}

	return result, nil
}

// selectTokens filters the universe down to the requested display names,
// preserving configured order. Empty means everything.
func (r *ScanRunner) selectTokens(only []string) []TokenSpec {
	if len(only) == 0 {
		return r.tokens
	}
	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		wanted[name] = true
	}
	var out []TokenSpec
	for _, t := range r.tokens {
		if wanted[t.Name] {
			out = append(out, t)
		}
	}
	return out
}
