package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TokenPulse/internal/domain/models"
	"TokenPulse/internal/domain/repository"
	"TokenPulse/internal/services/indicators"
	"TokenPulse/internal/services/scoring"
	"TokenPulse/internal/services/series"
	applogger "TokenPulse/pkg/logger"
)

// TokenSpec names one token of the scan universe: a display name, the
// adapter that serves it, and the provider-specific key (slug, trading
// pair).
type TokenSpec struct {
	Name   string
	Source string
	Key    string
}

// ScannerConfig bundles the per-scan knobs.
type ScannerConfig struct {
	Interval     repository.Interval
	Lookback     int
	Workers      int
	FetchTimeout time.Duration
	Indicators   indicators.Config
	Rules        scoring.Rules
}

// Scanner drives the fetch → align → indicators → score pipeline over a
// token universe. Tokens are processed by a bounded worker pool; each
// token's failure is isolated into its own record and never aborts the
// batch.
type Scanner struct {
	adapters map[string]repository.SourceAdapter
	aligner  *series.Aligner
	cfg      ScannerConfig
	log      *applogger.Logger
	metrics  repository.Metrics
}

// NewScanner builds a scanner over the given adapters, keyed by adapter
// name. metrics may be nil.
func NewScanner(adapters []repository.SourceAdapter, cfg ScannerConfig, log *applogger.Logger, metrics repository.Metrics) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.Interval == "" {
		cfg.Interval = repository.DefaultInterval()
	}
	if log == nil {
		log = applogger.Nop()
	}
	byName := make(map[string]repository.SourceAdapter, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}
	return &Scanner{
		adapters: byName,
		aligner:  series.NewAligner(cfg.Indicators.MinHistory()),
		cfg:      cfg,
		log:      log,
		metrics:  metrics,
	}
}

// Scan produces one SignalRecord per token, in input order, regardless of
// individual failures. Cancelling ctx abandons unprocessed tokens (they get
// error records) without corrupting records already completed.
func (s *Scanner) Scan(ctx context.Context, tokens []TokenSpec) []models.SignalRecord {
	records := make([]models.SignalRecord, len(tokens))

	type job struct {
		idx  int
		spec TokenSpec
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < s.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				records[j.idx] = s.scanToken(ctx, j.spec)
			}
		}()
	}

	for i, spec := range tokens {
		select {
		case jobs <- job{idx: i, spec: spec}:
		case <-ctx.Done():
			records[i] = models.NewErrorRecord(spec.Name, spec.Source, time.Now().UTC(),
				&models.DataUnavailableError{Source: spec.Source, Key: spec.Key, Err: ctx.Err()})
		}
	}
	close(jobs)
	wg.Wait()

	return records
}

// scanToken runs the whole pipeline for one token. Every failure mode —
// adapter errors, short history, computation errors, even panics — is
// converted into an error record here.
func (s *Scanner) scanToken(ctx context.Context, spec TokenSpec) (rec models.SignalRecord) {
	asOf := time.Now().UTC()

	defer func() {
		if r := recover(); r != nil {
			err := &models.ComputationErr{Stage: "pipeline", Err: fmt.Errorf("panic: %v", r)}
			s.log.Error("token pipeline panicked",
				applogger.String("token", spec.Name), applogger.Error(err))
			rec = s.failed(spec, asOf, err)
		}
	}()

	adapter, ok := s.adapters[spec.Source]
	if !ok {
		return s.failed(spec, asOf, &models.DataUnavailableError{
			Source: spec.Source,
			Key:    spec.Key,
			Err:    fmt.Errorf("no adapter registered for source"),
		})
	}

	fctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	raw, err := adapter.FetchSeries(fctx, spec.Key, s.cfg.Interval, s.cfg.Lookback)
	if err != nil {
		return s.failed(spec, asOf, wrapUnavailable(spec, err))
	}
	raw.Token = spec.Name

	aligned, err := s.aligner.Align(raw)
	if err != nil {
		return s.failed(spec, asOf, err)
	}

	snap, err := indicators.BuildSnapshot(aligned, s.cfg.Indicators)
	if err != nil {
		return s.failed(spec, asOf, err)
	}

	result, err := scoring.Score(snap.Latest, s.cfg.Rules)
	if err != nil {
		return s.failed(spec, asOf, err)
	}

	if s.metrics != nil {
		s.metrics.RecordConfidence(spec.Name, result.Confidence)
		s.metrics.RecordDecision(string(result.Decision))
	}
	s.log.Debug("token scored",
		applogger.String("token", spec.Name),
		applogger.Float64("confidence", result.Confidence),
		applogger.String("decision", string(result.Decision)))

	return models.NewSignalRecord(spec.Name, spec.Source, asOf, snap.Latest,
		result.Confidence, result.Decision, result.Rationale)
}

func (s *Scanner) failed(spec TokenSpec, asOf time.Time, err error) models.SignalRecord {
	if s.metrics != nil {
		s.metrics.RecordTokenError(models.ErrorKind(err))
	}
	s.log.Warn("token scan failed",
		applogger.String("token", spec.Name),
		applogger.String("source", spec.Source),
		applogger.Error(err))
	return models.NewErrorRecord(spec.Name, spec.Source, asOf, err)
}

// wrapUnavailable keeps already-typed pipeline errors intact and classifies
// everything else from an adapter as DataUnavailable. A fetch timeout lands
// here too, which is deliberate.
func wrapUnavailable(spec TokenSpec, err error) error {
	switch err.(type) {
	case *models.DataUnavailableError, *models.InsufficientHistoryError, *models.ComputationErr:
		return err
	default:
		return &models.DataUnavailableError{Source: spec.Source, Key: spec.Key, Err: err}
	}
}
