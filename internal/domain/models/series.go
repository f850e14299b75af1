package models

import (
	"encoding/json"
	"time"
)

// PricePoint is one raw price observation from a data source.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// VolumePoint is one raw volume observation. Volume series are optional and
// may cover fewer timestamps than the price series they belong to.
type VolumePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Volume    float64   `json:"volume"`
}

// PriceSeries holds the raw series fetched for one token from one source.
// Prices are expected in ascending timestamp order; the aligner re-sorts and
// de-duplicates defensively since providers occasionally violate this.
type PriceSeries struct {
	Token     string        `json:"token"`
	Source    string        `json:"source"`
	Prices    []PricePoint  `json:"prices"`
	Volumes   []VolumePoint `json:"volumes,omitempty"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// Value is an optional float64. Derived indicator series carry explicit gaps
// at positions where the window is not yet satisfied, instead of NaN, so
// consumers are forced to check Valid.
type Value struct {
	Float64 float64
	Valid   bool
}

// Some returns a present Value.
func Some(f float64) Value { return Value{Float64: f, Valid: true} }

// Missing returns an absent Value.
func Missing() Value { return Value{} }

// MarshalJSON encodes a missing Value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float64)
}

// UnmarshalJSON decodes null as a missing Value.
func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// AlignedPoint is one row of an aligned series: a day-truncated timestamp,
// its price, and the volume for that day if the source reported one.
type AlignedPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    Value     `json:"volume"`
}

// AlignedSeries is a price series with optional volume merged onto a single
// monotonically increasing day axis.
type AlignedSeries struct {
	Token  string         `json:"token"`
	Source string         `json:"source"`
	Points []AlignedPoint `json:"points"`
}

// Len returns the number of aligned points.
func (s *AlignedSeries) Len() int { return len(s.Points) }

// Prices extracts the price column.
func (s *AlignedSeries) Prices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price
	}
	return out
}

// Timestamps extracts the timestamp column.
func (s *AlignedSeries) Timestamps() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Timestamp
	}
	return out
}

// LastVolume returns the most recent non-missing volume.
func (s *AlignedSeries) LastVolume() Value {
	for i := len(s.Points) - 1; i >= 0; i-- {
		if s.Points[i].Volume.Valid {
			return s.Points[i].Volume
		}
	}
	return Missing()
}
