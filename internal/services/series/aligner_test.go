package series

import (
	"errors"
	"testing"
	"time"

	"TokenPulse/internal/domain/models"
)

func day(n int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestAlignTruncatesAndSorts(t *testing.T) {
	ps := &models.PriceSeries{
		Token:  "btc",
		Source: "test",
		Prices: []models.PricePoint{
			{Timestamp: day(2).Add(14 * time.Hour), Price: 3},
			{Timestamp: day(0).Add(9 * time.Hour), Price: 1},
			{Timestamp: day(1).Add(23 * time.Hour), Price: 2},
		},
	}
	aligned, err := NewAligner(1).Align(ps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if aligned.Len() != 3 {
		t.Fatalf("len = %d, want 3", aligned.Len())
	}
	for i, want := range []float64{1, 2, 3} {
		p := aligned.Points[i]
		if p.Price != want {
			t.Fatalf("points[%d].Price = %v, want %v", i, p.Price, want)
		}
		if !p.Timestamp.Equal(day(i)) {
			t.Fatalf("points[%d].Timestamp = %v, want %v", i, p.Timestamp, day(i))
		}
	}
}

func TestAlignDuplicateDayKeepsLast(t *testing.T) {
	ps := &models.PriceSeries{
		Prices: []models.PricePoint{
			{Timestamp: day(0).Add(1 * time.Hour), Price: 10},
			{Timestamp: day(0).Add(20 * time.Hour), Price: 11},
			{Timestamp: day(1), Price: 12},
		},
	}
	aligned, err := NewAligner(1).Align(ps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if aligned.Len() != 2 {
		t.Fatalf("len = %d, want 2", aligned.Len())
	}
	if aligned.Points[0].Price != 11 {
		t.Fatalf("duplicate day price = %v, want the later observation 11", aligned.Points[0].Price)
	}
}

func TestAlignVolumeInnerJoin(t *testing.T) {
	ps := &models.PriceSeries{
		Prices: []models.PricePoint{
			{Timestamp: day(0), Price: 1},
			{Timestamp: day(1), Price: 2},
			{Timestamp: day(2), Price: 3},
		},
		Volumes: []models.VolumePoint{
			{Timestamp: day(0).Add(5 * time.Hour), Volume: 500},
			{Timestamp: day(2), Volume: 700},
		},
	}
	aligned, err := NewAligner(1).Align(ps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := aligned.Points[0].Volume; !v.Valid || v.Float64 != 500 {
		t.Fatalf("points[0].Volume = %+v, want 500", v)
	}
	if aligned.Points[1].Volume.Valid {
		t.Fatalf("points[1].Volume should be missing, not imputed")
	}
	if v := aligned.Points[2].Volume; !v.Valid || v.Float64 != 700 {
		t.Fatalf("points[2].Volume = %+v, want 700", v)
	}
	if v := aligned.LastVolume(); !v.Valid || v.Float64 != 700 {
		t.Fatalf("LastVolume = %+v, want 700", v)
	}
}

func TestAlignInsufficientHistory(t *testing.T) {
	ps := &models.PriceSeries{
		Prices: []models.PricePoint{
			{Timestamp: day(0), Price: 1},
			{Timestamp: day(1), Price: 2},
		},
	}
	_, err := NewAligner(26).Align(ps)
	var ih *models.InsufficientHistoryError
	if !errors.As(err, &ih) {
		t.Fatalf("expected InsufficientHistoryError, got %v", err)
	}
	if ih.Required != 26 || ih.Available != 2 {
		t.Fatalf("error fields = %d/%d, want 26/2", ih.Required, ih.Available)
	}
	if got, want := ih.Error(), "insufficient history: need 26 points, have 2"; got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}
