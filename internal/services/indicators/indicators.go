package indicators

import (
	"math"

	"TokenPulse/internal/domain/models"
)

// Each indicator is a pure function from a price array to an output array of
// equal length. Leading positions are explicitly missing until the window is
// satisfied; nothing here ever emits NaN.

// SMA computes the simple rolling mean over the given window. The first
// window-1 positions are missing.
func SMA(prices []float64, window int) []models.Value {
	out := make([]models.Value, len(prices))
	if window <= 0 || len(prices) < window {
		return out
	}
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= window {
			sum -= prices[i-window]
		}
		if i >= window-1 {
			out[i] = models.Some(sum / float64(window))
		}
	}
	return out
}

// EMA computes the exponential moving average with alpha = 2/(span+1),
// seeded with the first available price. With that seed the series is
// defined from the first position on.
func EMA(prices []float64, span int) []models.Value {
	out := make([]models.Value, len(prices))
	if span <= 0 || len(prices) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	ema := prices[0]
	out[0] = models.Some(ema)
	for i := 1; i < len(prices); i++ {
		ema = alpha*prices[i] + (1-alpha)*ema
		out[i] = models.Some(ema)
	}
	return out
}

// emaOf runs the same recurrence over an already-derived array, seeding with
// the first defined value and skipping the missing prefix.
func emaOf(values []models.Value, span int) []models.Value {
	out := make([]models.Value, len(values))
	if span <= 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	seeded := false
	var ema float64
	for i, v := range values {
		if !v.Valid {
			continue
		}
		if !seeded {
			ema = v.Float64
			seeded = true
		} else {
			ema = alpha*v.Float64 + (1-alpha)*ema
		}
		out[i] = models.Some(ema)
	}
	return out
}

// RSI computes the relative strength index over a rolling window of simple
// mean gains and losses. The delta at position 0 is taken as zero, so the
// first window-1 positions are missing and the series is defined from
// position window-1 on.
//
// Division-by-zero cases are decided explicitly: a window with no losses is
// 100, and a fully flat window (no gains either) is 50.
func RSI(prices []float64, window int) []models.Value {
	out := make([]models.Value, len(prices))
	if window <= 0 || len(prices) < window {
		return out
	}

	gains := make([]float64, len(prices))
	losses := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	var gainSum, lossSum float64
	for i := range prices {
		gainSum += gains[i]
		lossSum += losses[i]
		if i >= window {
			gainSum -= gains[i-window]
			lossSum -= losses[i-window]
		}
		if i < window-1 {
			continue
		}
		avgGain := gainSum / float64(window)
		avgLoss := lossSum / float64(window)
		switch {
		case avgLoss == 0 && avgGain == 0:
			out[i] = models.Some(50)
		case avgLoss == 0:
			out[i] = models.Some(100)
		default:
			rs := avgGain / avgLoss
			out[i] = models.Some(100 - 100/(1+rs))
		}
	}
	return out
}

// MACD computes the MACD line (EMA short − EMA long) and its signal line
// (EMA of the line over signalSpan). Positions where either EMA is missing
// stay missing.
func MACD(prices []float64, shortSpan, longSpan, signalSpan int) (line, signal []models.Value) {
	emaShort := EMA(prices, shortSpan)
	emaLong := EMA(prices, longSpan)

	line = make([]models.Value, len(prices))
	for i := range prices {
		if emaShort[i].Valid && emaLong[i].Valid {
			line[i] = models.Some(emaShort[i].Float64 - emaLong[i].Float64)
		}
	}
	signal = emaOf(line, signalSpan)
	return line, signal
}

// Bollinger computes the middle band (SMA), and upper/lower bands at
// mid ± k standard deviations, using the population standard deviation over
// the trailing window for determinism.
func Bollinger(prices []float64, window int, k float64) (mid, upper, lower []models.Value) {
	mid = SMA(prices, window)
	upper = make([]models.Value, len(prices))
	lower = make([]models.Value, len(prices))
	if window <= 0 || len(prices) < window {
		return mid, upper, lower
	}
	for i := window - 1; i < len(prices); i++ {
		m := mid[i].Float64
		var ss float64
		for j := i - window + 1; j <= i; j++ {
			d := prices[j] - m
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(window))
		upper[i] = models.Some(m + k*sd)
		lower[i] = models.Some(m - k*sd)
	}
	return mid, upper, lower
}
