package scoring

import (
	"fmt"
	"math"

	"TokenPulse/internal/domain/models"
)

// Rules configures the decision rule set. Thresholds are configuration, not
// code, so deployments can tune them without a rebuild.
type Rules struct {
	RSIOversold    float64 `yaml:"rsi_oversold"`
	BuyThreshold   float64 `yaml:"buy_threshold"`
	MaybeThreshold float64 `yaml:"maybe_threshold"`

	// RSISellOverride forces a SELL whenever RSI exceeds RSIOverbought,
	// regardless of the computed confidence. Defaults to off.
	RSISellOverride bool    `yaml:"rsi_sell_override"`
	RSIOverbought   float64 `yaml:"rsi_overbought"`
}

// DefaultRules returns the standard rule set: RSI<30 oversold, BUY at 66,
// MAYBE at 33, no sell override.
func DefaultRules() Rules {
	return Rules{
		RSIOversold:    30,
		BuyThreshold:   66,
		MaybeThreshold: 33,
		RSIOverbought:  70,
	}
}

// Result is the scorer output: a confidence in [0,100], the categorical
// decision, and one rationale line per applied check in order.
type Result struct {
	Confidence float64
	Decision   models.Decision
	Rationale  []string
}

// Score combines the latest indicator values into a confidence score and a
// decision. It is a pure deterministic function of its inputs.
//
// Three binary checks, one point each: RSI below the oversold threshold,
// MACD line above its signal, and price above both EMAs. Confidence is
// points/3*100 rounded to one decimal, so it only ever takes the values
// 0, 33.3, 66.7 and 100.
func Score(latest models.SnapshotLatest, rules Rules) (Result, error) {
	required := map[string]models.Value{
		"rsi":         latest.RSI,
		"macd_line":   latest.MACDLine,
		"macd_signal": latest.MACDSignal,
		"ema_short":   latest.EMAShort,
		"ema_long":    latest.EMALong,
	}
	for name, v := range required {
		if !v.Valid {
			return Result{}, &models.ComputationErr{
				Stage: "score",
				Err:   fmt.Errorf("latest %s is missing", name),
			}
		}
	}

	rsi := latest.RSI.Float64
	macd := latest.MACDLine.Float64
	signal := latest.MACDSignal.Float64
	price := latest.Price
	emaShort := latest.EMAShort.Float64
	emaLong := latest.EMALong.Float64

	points := 0
	rationale := make([]string, 0, 4)

	if rsi < rules.RSIOversold {
		points++
		rationale = append(rationale, fmt.Sprintf("RSI %.1f < %.1f", rsi, rules.RSIOversold))
	} else {
		rationale = append(rationale, fmt.Sprintf("RSI %.1f >= %.1f", rsi, rules.RSIOversold))
	}

	if macd > signal {
		points++
		rationale = append(rationale, fmt.Sprintf("MACD %.4f > signal %.4f", macd, signal))
	} else {
		rationale = append(rationale, fmt.Sprintf("MACD %.4f <= signal %.4f", macd, signal))
	}

	if price > emaShort && price > emaLong {
		points++
		rationale = append(rationale, fmt.Sprintf("price %.4f above EMAs %.4f / %.4f", price, emaShort, emaLong))
	} else {
		rationale = append(rationale, fmt.Sprintf("price %.4f not above both EMAs %.4f / %.4f", price, emaShort, emaLong))
	}

	confidence := round1(float64(points) / 3.0 * 100.0)
	decision := decisionFor(confidence, rules)

	if rules.RSISellOverride && rsi > rules.RSIOverbought {
		decision = models.DecisionSell
		rationale = append(rationale, fmt.Sprintf("RSI %.1f > %.1f, overbought sell override", rsi, rules.RSIOverbought))
	}

	return Result{Confidence: confidence, Decision: decision, Rationale: rationale}, nil
}

// decisionFor maps a confidence onto a decision. The mapping is monotonic:
// a higher confidence never yields a lower decision.
func decisionFor(confidence float64, rules Rules) models.Decision {
	switch {
	case confidence >= rules.BuyThreshold:
		return models.DecisionBuy
	case confidence >= rules.MaybeThreshold:
		return models.DecisionMaybe
	default:
		return models.DecisionNo
	}
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
