package models

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func TestValueJSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}{A: Some(42.5), B: Missing()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"a":42.5,"b":null}` {
		t.Fatalf("json = %s", b)
	}

	var out struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.A.Valid || out.A.Float64 != 42.5 {
		t.Fatalf("a = %+v", out.A)
	}
	if out.B.Valid {
		t.Fatalf("b should be missing after decoding null")
	}
}

func TestDecisionRankOrdering(t *testing.T) {
	order := []Decision{DecisionSell, DecisionNo, DecisionMaybe, DecisionBuy}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Fatalf("%v should rank above %v", order[i], order[i-1])
		}
	}
	if Decision("HOLD").Rank() >= DecisionSell.Rank() {
		t.Fatalf("unknown decisions must rank below SELL")
	}
}

func TestRecordConstructors(t *testing.T) {
	asOf := time.Date(2026, 5, 1, 6, 0, 0, 0, time.UTC)
	ok := NewSignalRecord("BTC", "coingecko", asOf,
		SnapshotLatest{Price: 50000}, 66.7, DecisionBuy, []string{"x"})
	if ok.Failed() {
		t.Fatalf("ok record reports failure")
	}
	if ok.Price != 50000 || ok.Confidence == nil || *ok.Confidence != 66.7 {
		t.Fatalf("ok record = %+v", ok)
	}

	bad := NewErrorRecord("BTC", "coingecko", asOf, fmt.Errorf("down"))
	if !bad.Failed() || bad.Error != "down" {
		t.Fatalf("error record = %+v", bad)
	}
	if bad.Confidence != nil || bad.Indicators != nil || bad.Decision != "" {
		t.Fatalf("error record must not carry decision fields: %+v", bad)
	}
}

func TestScanResultBuys(t *testing.T) {
	asOf := time.Now()
	res := ScanResult{Records: []SignalRecord{
		NewSignalRecord("A", "s", asOf, SnapshotLatest{}, 100, DecisionBuy, nil),
		NewErrorRecord("B", "s", asOf, fmt.Errorf("x")),
		NewSignalRecord("C", "s", asOf, SnapshotLatest{}, 0, DecisionNo, nil),
		NewSignalRecord("D", "s", asOf, SnapshotLatest{}, 100, DecisionBuy, nil),
	}}
	buys := res.Buys()
	if len(buys) != 2 || buys[0].Token != "A" || buys[1].Token != "D" {
		t.Fatalf("buys = %+v", buys)
	}
}

func TestErrorKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&DataUnavailableError{Source: "s", Key: "k", Err: fmt.Errorf("x")}, "data_unavailable"},
		{&InsufficientHistoryError{Required: 26, Available: 2}, "insufficient_history"},
		{&ComputationErr{Stage: "rsi", Err: fmt.Errorf("x")}, "computation"},
		{fmt.Errorf("plain"), "other"},
		{fmt.Errorf("wrapped: %w", &ComputationErr{Stage: "x", Err: fmt.Errorf("y")}), "computation"},
	}
	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}
