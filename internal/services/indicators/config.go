package indicators

// Config holds the indicator windows. Every window is configuration, not a
// code fork; defaults are the conventional daily-chart values.
type Config struct {
	RSIWindow  int     `yaml:"rsi_window"`
	EMAShort   int     `yaml:"ema_short"`
	EMALong    int     `yaml:"ema_long"`
	MACDSignal int     `yaml:"macd_signal"`
	BollWindow int     `yaml:"boll_window"`
	BollK      float64 `yaml:"boll_k"`
	SMAShort   int     `yaml:"sma_short"`
	SMALong    int     `yaml:"sma_long"`

	// RequireSMA folds the SMA windows into the minimum-history requirement.
	// Off by default: the short CoinGecko lookbacks never reach 200 days and
	// the score does not depend on the SMAs.
	RequireSMA bool `yaml:"require_sma"`
}

// DefaultConfig returns the standard RSI(14) / MACD(12,26,9) /
// Bollinger(20,2) / SMA(50,200) parameter set.
func DefaultConfig() Config {
	return Config{
		RSIWindow:  14,
		EMAShort:   12,
		EMALong:    26,
		MACDSignal: 9,
		BollWindow: 20,
		BollK:      2,
		SMAShort:   50,
		SMALong:    200,
	}
}

// MinHistory returns the largest window the aligned series must satisfy
// before any snapshot can be computed.
func (c Config) MinHistory() int {
	min := c.EMALong
	if c.RSIWindow+1 > min {
		min = c.RSIWindow + 1
	}
	if c.BollWindow > min {
		min = c.BollWindow
	}
	if c.RequireSMA {
		if c.SMAShort > min {
			min = c.SMAShort
		}
		if c.SMALong > min {
			min = c.SMALong
		}
	}
	return min
}
