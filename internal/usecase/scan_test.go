package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"TokenPulse/internal/domain/models"
	"TokenPulse/internal/domain/repository"
	"TokenPulse/internal/services/indicators"
	"TokenPulse/internal/services/scoring"
)

// stubAdapter serves canned series per key.
type stubAdapter struct {
	name   string
	series map[string][]float64
	errs   map[string]error
	panics map[string]bool
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) FetchSeries(ctx context.Context, key string, _ repository.Interval, _ int) (*models.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.panics[key] {
		panic("stub adapter exploded")
	}
	if err, ok := s.errs[key]; ok {
		return nil, err
	}
	prices, ok := s.series[key]
	if !ok {
		return nil, &models.DataUnavailableError{Source: s.name, Key: key, Err: fmt.Errorf("unknown key")}
	}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ps := &models.PriceSeries{Token: key, Source: s.name, FetchedAt: time.Now()}
	for i, p := range prices {
		ps.Prices = append(ps.Prices, models.PricePoint{Timestamp: base.AddDate(0, 0, i), Price: p})
		ps.Volumes = append(ps.Volumes, models.VolumePoint{Timestamp: base.AddDate(0, 0, i), Volume: 1e6})
	}
	return ps, nil
}

type countingMetrics struct {
	mu        sync.Mutex
	errKinds  map[string]int
	decisions map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{errKinds: map[string]int{}, decisions: map[string]int{}}
}

func (m *countingMetrics) RecordScan(float64) {}
func (m *countingMetrics) RecordTokenError(kind string) {
	m.mu.Lock()
	m.errKinds[kind]++
	m.mu.Unlock()
}
func (m *countingMetrics) RecordConfidence(string, float64) {}
func (m *countingMetrics) RecordDecision(decision string) {
	m.mu.Lock()
	m.decisions[decision]++
	m.mu.Unlock()
}

// buySeries is a 40-day series engineered to fire all three checks: a long
// flat stretch, one spike and crash that loads the RSI loss window, then a
// steady climb that lifts price above both EMAs and the MACD above its
// signal while RSI stays depressed by the crash.
func buySeries() []float64 {
	prices := make([]float64, 0, 40)
	for i := 0; i < 25; i++ {
		prices = append(prices, 100)
	}
	prices = append(prices, 300, 110)
	for p := 115.0; len(prices) < 40; p += 5 {
		prices = append(prices, p)
	}
	return prices
}

func testConfig() ScannerConfig {
	return ScannerConfig{
		Interval:     repository.IntervalDaily,
		Lookback:     40,
		Workers:      3,
		FetchTimeout: time.Second,
		Indicators:   indicators.DefaultConfig(),
		Rules:        scoring.DefaultRules(),
	}
}

func TestScanBuySignalEndToEnd(t *testing.T) {
	adapter := &stubAdapter{name: "stub", series: map[string][]float64{"btc": buySeries()}}
	s := NewScanner([]repository.SourceAdapter{adapter}, testConfig(), nil, nil)

	records := s.Scan(context.Background(), []TokenSpec{{Name: "BTC", Source: "stub", Key: "btc"}})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	r := records[0]
	if r.Failed() {
		t.Fatalf("unexpected failure: %s", r.Error)
	}
	if r.Decision != models.DecisionBuy {
		t.Fatalf("decision = %v, want BUY (rationale: %v)", r.Decision, r.Rationale)
	}
	if r.Confidence == nil || *r.Confidence != 100 {
		t.Fatalf("confidence = %v, want 100", r.Confidence)
	}
	if len(r.Rationale) != 3 {
		t.Fatalf("rationale has %d entries, want 3: %v", len(r.Rationale), r.Rationale)
	}
	if r.Indicators == nil || !r.Indicators.RSI.Valid || r.Indicators.RSI.Float64 >= 30 {
		t.Fatalf("latest RSI = %+v, want a value below 30", r.Indicators.RSI)
	}
	if r.Price != 175 {
		t.Fatalf("price = %v, want the last close 175", r.Price)
	}
}

func TestScanIsolatesFailures(t *testing.T) {
	adapter := &stubAdapter{
		name:   "stub",
		series: map[string][]float64{"btc": buySeries(), "sol": buySeries()},
		errs:   map[string]error{"eth": &models.DataUnavailableError{Source: "stub", Key: "eth", Err: fmt.Errorf("503")}},
	}
	m := newCountingMetrics()
	s := NewScanner([]repository.SourceAdapter{adapter}, testConfig(), nil, m)

	tokens := []TokenSpec{
		{Name: "BTC", Source: "stub", Key: "btc"},
		{Name: "ETH", Source: "stub", Key: "eth"},
		{Name: "SOL", Source: "stub", Key: "sol"},
	}
	records := s.Scan(context.Background(), tokens)
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i, want := range []string{"BTC", "ETH", "SOL"} {
		if records[i].Token != want {
			t.Fatalf("records[%d].Token = %s, want %s (order must match input)", i, records[i].Token, want)
		}
	}
	if records[0].Failed() || records[2].Failed() {
		t.Fatalf("healthy tokens must not be affected by a failing neighbor")
	}
	if !records[1].Failed() || !strings.Contains(records[1].Error, "503") {
		t.Fatalf("records[1] = %+v, want the adapter error", records[1])
	}
	if m.errKinds["data_unavailable"] != 1 {
		t.Fatalf("error kind counts = %v, want one data_unavailable", m.errKinds)
	}
}

func TestScanShortHistory(t *testing.T) {
	adapter := &stubAdapter{name: "stub", series: map[string][]float64{"new": {1, 2, 3, 4, 5}}}
	s := NewScanner([]repository.SourceAdapter{adapter}, testConfig(), nil, nil)

	records := s.Scan(context.Background(), []TokenSpec{{Name: "NEW", Source: "stub", Key: "new"}})
	if !records[0].Failed() {
		t.Fatalf("expected a failed record for a 5-point series")
	}
	if !strings.Contains(records[0].Error, "insufficient history") {
		t.Fatalf("error = %q, want insufficient history", records[0].Error)
	}
}

func TestScanUnknownSource(t *testing.T) {
	adapter := &stubAdapter{name: "stub"}
	s := NewScanner([]repository.SourceAdapter{adapter}, testConfig(), nil, nil)

	records := s.Scan(context.Background(), []TokenSpec{{Name: "X", Source: "nope", Key: "x"}})
	if !records[0].Failed() || !strings.Contains(records[0].Error, "no adapter registered") {
		t.Fatalf("record = %+v, want a missing-adapter error", records[0])
	}
}

func TestScanRecoversPanics(t *testing.T) {
	adapter := &stubAdapter{
		name:   "stub",
		series: map[string][]float64{"btc": buySeries()},
		panics: map[string]bool{"boom": true},
	}
	s := NewScanner([]repository.SourceAdapter{adapter}, testConfig(), nil, nil)

	records := s.Scan(context.Background(), []TokenSpec{
		{Name: "BOOM", Source: "stub", Key: "boom"},
		{Name: "BTC", Source: "stub", Key: "btc"},
	})
	if !records[0].Failed() || !strings.Contains(records[0].Error, "panic") {
		t.Fatalf("records[0] = %+v, want a recovered panic", records[0])
	}
	if records[1].Failed() {
		t.Fatalf("the panic must not poison other tokens: %s", records[1].Error)
	}
}

func TestScanDeterministic(t *testing.T) {
	adapter := &stubAdapter{name: "stub", series: map[string][]float64{"btc": buySeries()}}
	s := NewScanner([]repository.SourceAdapter{adapter}, testConfig(), nil, nil)
	spec := []TokenSpec{{Name: "BTC", Source: "stub", Key: "btc"}}

	first := s.Scan(context.Background(), spec)
	for i := 0; i < 5; i++ {
		again := s.Scan(context.Background(), spec)
		if again[0].Decision != first[0].Decision || *again[0].Confidence != *first[0].Confidence {
			t.Fatalf("scan %d diverged: %+v vs %+v", i, again[0], first[0])
		}
	}
}

func TestScanCancelledContext(t *testing.T) {
	adapter := &stubAdapter{name: "stub", series: map[string][]float64{"btc": buySeries()}}
	s := NewScanner([]repository.SourceAdapter{adapter}, testConfig(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := s.Scan(ctx, []TokenSpec{
		{Name: "BTC", Source: "stub", Key: "btc"},
		{Name: "ETH", Source: "stub", Key: "btc"},
	})
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	for i, r := range records {
		if !r.Failed() {
			t.Fatalf("records[%d] should fail under a cancelled context", i)
		}
	}
}

func TestRunnerSelectsTokens(t *testing.T) {
	adapter := &stubAdapter{name: "stub", series: map[string][]float64{"btc": buySeries(), "sol": buySeries()}}
	s := NewScanner([]repository.SourceAdapter{adapter}, testConfig(), nil, nil)
	tokens := []TokenSpec{
		{Name: "BTC", Source: "stub", Key: "btc"},
		{Name: "SOL", Source: "stub", Key: "sol"},
	}
	runner := NewScanRunner(s, tokens, nil, nil, nil, nil)

	result, err := runner.RunOnce(context.Background(), []string{"SOL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 1 || result.Records[0].Token != "SOL" {
		t.Fatalf("records = %+v, want just SOL", result.Records)
	}
	if runner.Latest() != result {
		t.Fatalf("Latest() must return the retained result")
	}
	if len(result.Buys()) != 1 {
		t.Fatalf("buys = %d, want 1", len(result.Buys()))
	}
}

func TestRunnerUnknownSelection(t *testing.T) {
	adapter := &stubAdapter{name: "stub", series: map[string][]float64{"btc": buySeries()}}
	s := NewScanner([]repository.SourceAdapter{adapter}, testConfig(), nil, nil)
	runner := NewScanRunner(s, []TokenSpec{{Name: "BTC", Source: "stub", Key: "btc"}}, nil, nil, nil, nil)

	if _, err := runner.RunOnce(context.Background(), []string{"DOGE"}); err == nil {
		t.Fatalf("expected an error when the selection matches nothing")
	}
}
