package series

import (
	"sort"
	"time"

	"TokenPulse/internal/domain/models"
	"TokenPulse/pkg/util"
)

// Aligner merges a raw price series and its optional volume series onto a
// single day-truncated, monotonically increasing timestamp axis. It is a
// pure transformation: no I/O, no shared state.
type Aligner struct {
	minPoints int
}

// NewAligner creates an aligner that rejects series shorter than minPoints,
// which should be the largest indicator window the output has to feed.
func NewAligner(minPoints int) *Aligner {
	if minPoints < 1 {
		minPoints = 1
	}
	return &Aligner{minPoints: minPoints}
}

// MinPoints returns the configured minimum history length.
func (a *Aligner) MinPoints() int { return a.minPoints }

// Align produces one AlignedSeries from the raw input. Price timestamps are
// truncated to day granularity; when a provider reports several points for
// the same day the last one wins. Volume is inner-joined on the day axis and
// marked missing where the source reported none — never imputed as zero.
func (a *Aligner) Align(ps *models.PriceSeries) (*models.AlignedSeries, error) {
	byDay := make(map[time.Time]models.AlignedPoint, len(ps.Prices))
	for _, p := range ps.Prices {
		day := util.DayFloor(p.Timestamp)
		byDay[day] = models.AlignedPoint{Timestamp: day, Price: p.Price, Volume: models.Missing()}
	}

	volByDay := make(map[time.Time]float64, len(ps.Volumes))
	for _, v := range ps.Volumes {
		volByDay[util.DayFloor(v.Timestamp)] = v.Volume
	}

	points := make([]models.AlignedPoint, 0, len(byDay))
	for day, pt := range byDay {
		if vol, ok := volByDay[day]; ok {
			pt.Volume = models.Some(vol)
		}
		points = append(points, pt)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	if len(points) < a.minPoints {
		return nil, &models.InsufficientHistoryError{Required: a.minPoints, Available: len(points)}
	}

	return &models.AlignedSeries{
		Token:  ps.Token,
		Source: ps.Source,
		Points: points,
	}, nil
}
