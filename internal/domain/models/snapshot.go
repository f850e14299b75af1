package models

import "time"

// IndicatorSnapshot holds the full-length derived arrays for one aligned
// series. Every array has the same length and timestamp alignment as the
// input series; leading positions are missing until the window fills.
type IndicatorSnapshot struct {
	Timestamps []time.Time `json:"timestamps"`
	RSI        []Value     `json:"rsi"`
	EMAShort   []Value     `json:"ema_short"`
	EMALong    []Value     `json:"ema_long"`
	MACDLine   []Value     `json:"macd_line"`
	MACDSignal []Value     `json:"macd_signal"`
	SMAShort   []Value     `json:"sma_short"`
	SMALong    []Value     `json:"sma_long"`
	BollMid    []Value     `json:"boll_mid"`
	BollUpper  []Value     `json:"boll_upper"`
	BollLower  []Value     `json:"boll_lower"`

	Latest SnapshotLatest `json:"latest"`
}

// SnapshotLatest carries the most recent non-missing scalar of each derived
// series plus the closing price and volume of the last aligned point. This is
// the part of a snapshot that survives into a SignalRecord.
type SnapshotLatest struct {
	Price      float64 `json:"price"`
	Volume     Value   `json:"volume"`
	RSI        Value   `json:"rsi"`
	EMAShort   Value   `json:"ema_short"`
	EMALong    Value   `json:"ema_long"`
	MACDLine   Value   `json:"macd_line"`
	MACDSignal Value   `json:"macd_signal"`
	SMAShort   Value   `json:"sma_short"`
	SMALong    Value   `json:"sma_long"`
	BollMid    Value   `json:"boll_mid"`
	BollUpper  Value   `json:"boll_upper"`
	BollLower  Value   `json:"boll_lower"`
}

// latestOf returns the last non-missing value of a derived array.
func latestOf(vs []Value) Value {
	for i := len(vs) - 1; i >= 0; i-- {
		if vs[i].Valid {
			return vs[i]
		}
	}
	return Missing()
}

// FillLatest recomputes the Latest block from the arrays and the aligned
// series the snapshot was derived from.
func (s *IndicatorSnapshot) FillLatest(aligned *AlignedSeries) {
	n := aligned.Len()
	if n == 0 {
		s.Latest = SnapshotLatest{}
		return
	}
	s.Latest = SnapshotLatest{
		Price:      aligned.Points[n-1].Price,
		Volume:     aligned.LastVolume(),
		RSI:        latestOf(s.RSI),
		EMAShort:   latestOf(s.EMAShort),
		EMALong:    latestOf(s.EMALong),
		MACDLine:   latestOf(s.MACDLine),
		MACDSignal: latestOf(s.MACDSignal),
		SMAShort:   latestOf(s.SMAShort),
		SMALong:    latestOf(s.SMALong),
		BollMid:    latestOf(s.BollMid),
		BollUpper:  latestOf(s.BollUpper),
		BollLower:  latestOf(s.BollLower),
	}
}
