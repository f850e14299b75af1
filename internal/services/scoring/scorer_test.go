package scoring

import (
	"errors"
	"strings"
	"testing"

	"TokenPulse/internal/domain/models"
)

func latest(rsi, macd, signal, price, emaShort, emaLong float64) models.SnapshotLatest {
	return models.SnapshotLatest{
		Price:      price,
		RSI:        models.Some(rsi),
		MACDLine:   models.Some(macd),
		MACDSignal: models.Some(signal),
		EMAShort:   models.Some(emaShort),
		EMALong:    models.Some(emaLong),
	}
}

func TestScoreValues(t *testing.T) {
	rules := DefaultRules()
	cases := []struct {
		name       string
		latest     models.SnapshotLatest
		confidence float64
		decision   models.Decision
	}{
		{"all checks pass", latest(25, 2, 1, 110, 100, 90), 100, models.DecisionBuy},
		{"two checks pass", latest(45, 2, 1, 110, 100, 90), 66.7, models.DecisionBuy},
		{"one check passes", latest(45, 2, 1, 95, 100, 90), 33.3, models.DecisionMaybe},
		{"no checks pass", latest(45, 1, 2, 95, 100, 90), 0, models.DecisionNo},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Score(tc.latest, rules)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Confidence != tc.confidence {
				t.Fatalf("confidence = %v, want %v", res.Confidence, tc.confidence)
			}
			if res.Decision != tc.decision {
				t.Fatalf("decision = %v, want %v", res.Decision, tc.decision)
			}
			if len(res.Rationale) != 3 {
				t.Fatalf("rationale has %d entries, want 3", len(res.Rationale))
			}
		})
	}
}

func TestScoreRationaleOrder(t *testing.T) {
	res, err := Score(latest(25, 2, 1, 110, 100, 90), DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(res.Rationale[0], "RSI") {
		t.Fatalf("rationale[0] = %q, want the RSI check first", res.Rationale[0])
	}
	if !strings.HasPrefix(res.Rationale[1], "MACD") {
		t.Fatalf("rationale[1] = %q, want the MACD check second", res.Rationale[1])
	}
	if !strings.HasPrefix(res.Rationale[2], "price") {
		t.Fatalf("rationale[2] = %q, want the price check third", res.Rationale[2])
	}
}

func TestScoreDeterministic(t *testing.T) {
	in := latest(29.9, 0.0001, 0, 100.01, 100, 100)
	first, err := Score(in, DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Score(in, DefaultRules())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.Confidence != first.Confidence || again.Decision != first.Decision {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}

func TestScoreMonotonicDecision(t *testing.T) {
	// More points may never produce a lower-ranked decision.
	inputs := []models.SnapshotLatest{
		latest(45, 1, 2, 95, 100, 90),  // 0 points
		latest(25, 1, 2, 95, 100, 90),  // 1 point
		latest(25, 2, 1, 95, 100, 90),  // 2 points
		latest(25, 2, 1, 110, 100, 90), // 3 points
	}
	prev := -1
	for i, in := range inputs {
		res, err := Score(in, DefaultRules())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r := res.Decision.Rank(); r < prev {
			t.Fatalf("decision rank dropped at %d points: %v", i, res.Decision)
		} else {
			prev = r
		}
	}
}

func TestScoreBoundaryThresholds(t *testing.T) {
	rules := DefaultRules()
	// 66.7 >= 66 is a BUY, 33.3 >= 33 is a MAYBE
	res, _ := Score(latest(45, 2, 1, 110, 100, 90), rules)
	if res.Decision != models.DecisionBuy {
		t.Fatalf("66.7 should clear the default buy threshold, got %v", res.Decision)
	}
	res, _ = Score(latest(25, 1, 2, 95, 100, 90), rules)
	if res.Decision != models.DecisionMaybe {
		t.Fatalf("33.3 should clear the default maybe threshold, got %v", res.Decision)
	}
}

func TestScoreSellOverride(t *testing.T) {
	rules := DefaultRules()
	in := latest(85, 2, 1, 110, 100, 90) // MACD + price pass: 66.7, BUY without override

	res, err := Score(in, rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Decision != models.DecisionBuy {
		t.Fatalf("override disabled: decision = %v, want BUY", res.Decision)
	}

	rules.RSISellOverride = true
	res, err = Score(in, rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Decision != models.DecisionSell {
		t.Fatalf("override enabled: decision = %v, want SELL", res.Decision)
	}
	if res.Confidence != 66.7 {
		t.Fatalf("override must not change the confidence, got %v", res.Confidence)
	}
	if len(res.Rationale) != 4 || !strings.Contains(res.Rationale[3], "overbought") {
		t.Fatalf("override should append a rationale entry, got %v", res.Rationale)
	}
}

func TestScoreMissingInput(t *testing.T) {
	in := latest(25, 2, 1, 110, 100, 90)
	in.MACDSignal = models.Missing()
	_, err := Score(in, DefaultRules())
	var ce *models.ComputationErr
	if !errors.As(err, &ce) {
		t.Fatalf("expected ComputationErr for missing input, got %v", err)
	}
}
