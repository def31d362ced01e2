package market

import (
	"math"
	"testing"
)

func storeWithCloses(closes ...float64) *SeriesStore {
	s := NewSeriesStore(252, 252)
	for _, c := range closes {
		s.PushClose(c)
	}
	return s
}

func TestComputer_ReturnNDays(t *testing.T) {
	s := storeWithCloses(100, 105, 110, 120)
	c := NewComputer(s)

	got, ok := c.ReturnNDays(3)
	if !ok {
		t.Fatal("expected return available")
	}
	if math.Abs(got-0.2) > 1e-12 {
		t.Errorf("expected 0.2, got %v", got)
	}

	if _, ok := c.ReturnNDays(4); ok {
		t.Error("expected unavailable with insufficient history")
	}
}

func TestComputer_DrawdownFromHigh(t *testing.T) {
	s := storeWithCloses(100, 120, 110, 90)
	c := NewComputer(s)

	got, ok := c.DrawdownFromHigh(4)
	if !ok {
		t.Fatal("expected drawdown available")
	}
	want := 90.0/120.0 - 1
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got > 0 {
		t.Errorf("drawdown from high must be <= 0, got %v", got)
	}

	if _, ok := c.DrawdownFromHigh(10); ok {
		t.Error("expected unavailable with insufficient history")
	}
}

func TestComputer_VolRatio_ShallowWindowFallsBack(t *testing.T) {
	s := NewSeriesStore(252, 252)
	for i := 0; i < 50; i++ {
		s.PushVol(10)
	}
	c := NewComputer(s)

	if got := c.VolRatio(25); got != 1.0 {
		t.Errorf("expected fallback ratio 1.0 under 100 observations, got %v", got)
	}
}

func TestComputer_VolRatio_AgainstMedian(t *testing.T) {
	s := NewSeriesStore(252, 252)
	for i := 0; i < 150; i++ {
		s.PushVol(10)
	}
	c := NewComputer(s)

	if got := c.VolRatio(16); math.Abs(got-1.6) > 1e-12 {
		t.Errorf("expected ratio 1.6 against median 10, got %v", got)
	}
}

func TestMedian(t *testing.T) {
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Errorf("odd median: expected 2, got %v", got)
	}
	if got := median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Errorf("even median: expected 2.5, got %v", got)
	}
}
