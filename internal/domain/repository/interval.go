package repository

// Interval represents the sampling resolution of a fetched series.
type Interval string

const (
	IntervalHourly Interval = "1h"
	IntervalDaily  Interval = "1d"
	IntervalWeekly Interval = "1w"
)

// IsValidInterval returns true if iv is a supported interval.
func IsValidInterval(iv Interval) bool {
	switch iv {
	case IntervalHourly, IntervalDaily, IntervalWeekly:
		return true
	default:
		return false
	}
}

// DefaultInterval returns the default sampling interval.
func DefaultInterval() Interval { return IntervalDaily }

// NormalizeInterval converts a raw string to a valid interval (or default).
func NormalizeInterval(s string) Interval {
	if s == "" {
		return DefaultInterval()
	}
	iv := Interval(s)
	if IsValidInterval(iv) {
		return iv
	}
	return DefaultInterval()
}
