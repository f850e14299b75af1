package models

import "time"

// Decision is the categorical trade recommendation. The ordering matters:
// SELL < NO < MAYBE < BUY.
type Decision string

const (
	DecisionSell  Decision = "SELL"
	DecisionNo    Decision = "NO"
	DecisionMaybe Decision = "MAYBE"
	DecisionBuy   Decision = "BUY"
)

// Rank maps a decision onto its ordinal position. Unknown decisions rank
// below SELL so they never masquerade as actionable.
func (d Decision) Rank() int {
	switch d {
	case DecisionSell:
		return 0
	case DecisionNo:
		return 1
	case DecisionMaybe:
		return 2
	case DecisionBuy:
		return 3
	default:
		return -1
	}
}

// SignalRecord is the per-token output of one scan. It is a tagged union:
// either Decision/Confidence/Rationale are populated (ok) or Error is (failed),
// never both. Use NewSignalRecord / NewErrorRecord to keep that invariant.
type SignalRecord struct {
	Token      string          `json:"token"`
	Source     string          `json:"source"`
	AsOf       time.Time       `json:"as_of"`
	Price      float64         `json:"price,omitempty"`
	Indicators *SnapshotLatest `json:"indicators,omitempty"`
	Confidence *float64        `json:"confidence,omitempty"`
	Decision   Decision        `json:"decision,omitempty"`
	Rationale  []string        `json:"rationale,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// NewSignalRecord builds an ok record.
func NewSignalRecord(token, source string, asOf time.Time, latest SnapshotLatest, confidence float64, decision Decision, rationale []string) SignalRecord {
	l := latest
	return SignalRecord{
		Token:      token,
		Source:     source,
		AsOf:       asOf,
		Price:      latest.Price,
		Indicators: &l,
		Confidence: &confidence,
		Decision:   decision,
		Rationale:  rationale,
	}
}

// NewErrorRecord builds a failed record carrying only the error text.
func NewErrorRecord(token, source string, asOf time.Time, err error) SignalRecord {
	return SignalRecord{
		Token:  token,
		Source: source,
		AsOf:   asOf,
		Error:  err.Error(),
	}
}

// Failed reports whether the record carries an error instead of a decision.
func (r *SignalRecord) Failed() bool { return r.Error != "" }

// ScanResult is one whole batch run: the ordered records plus run metadata.
type ScanResult struct {
	RunID     string         `json:"run_id"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
	Records   []SignalRecord `json:"records"`
}

// Buys returns the records whose decision is BUY, preserving order.
func (s *ScanResult) Buys() []SignalRecord {
	var out []SignalRecord
	for _, r := range s.Records {
		if !r.Failed() && r.Decision == DecisionBuy {
			out = append(out, r)
		}
	}
	return out
}
