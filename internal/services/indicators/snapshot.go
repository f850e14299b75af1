package indicators

import (
	"fmt"

	"TokenPulse/internal/domain/models"
)

// BuildSnapshot derives the full indicator set from an aligned series. The
// output arrays share the series' length and timestamp alignment. Domain
// violations (an RSI outside [0,100]) surface as a ComputationErr instead of
// propagating silently.
func BuildSnapshot(aligned *models.AlignedSeries, cfg Config) (*models.IndicatorSnapshot, error) {
	if aligned.Len() == 0 {
		return nil, &models.ComputationErr{Stage: "snapshot", Err: fmt.Errorf("empty aligned series")}
	}

	prices := aligned.Prices()

	snap := &models.IndicatorSnapshot{Timestamps: aligned.Timestamps()}
	snap.RSI = RSI(prices, cfg.RSIWindow)
	snap.EMAShort = EMA(prices, cfg.EMAShort)
	snap.EMALong = EMA(prices, cfg.EMALong)
	snap.MACDLine, snap.MACDSignal = MACD(prices, cfg.EMAShort, cfg.EMALong, cfg.MACDSignal)
	snap.SMAShort = SMA(prices, cfg.SMAShort)
	snap.SMALong = SMA(prices, cfg.SMALong)
	snap.BollMid, snap.BollUpper, snap.BollLower = Bollinger(prices, cfg.BollWindow, cfg.BollK)

	for i, v := range snap.RSI {
		if v.Valid && (v.Float64 < 0 || v.Float64 > 100) {
			return nil, &models.ComputationErr{
				Stage: "rsi",
				Err:   fmt.Errorf("value %.4f at position %d outside [0,100]", v.Float64, i),
			}
		}
	}

	snap.FillLatest(aligned)
	return snap, nil
}
