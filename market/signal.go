package market

import "sort"

// minMedianObs is the vol-window depth required before the trailing median
// is considered a usable baseline.
const minMedianObs = 100

// Snapshot bundles every input the classifier reads in one evaluation cycle.
// It is built once per cycle and never mutated afterwards.
type Snapshot struct {
	Close            float64
	SMA50            float64
	SMA200           float64
	RSI              float64
	RealizedVol20    float64
	Return20         float64
	VolRatio         float64
	DaysBelowSMA50   int
	DrawdownFromHigh float64
}

// Computer derives regime signals from the rolling series store.
type Computer struct {
	store *SeriesStore
}

// NewComputer creates a signal computer over the given store.
func NewComputer(store *SeriesStore) *Computer {
	return &Computer{store: store}
}

// RealizedVol20 returns the current annualized 20-day realized vol in percent.
func (c *Computer) RealizedVol20() (float64, bool) {
	return RealizedVol20(c.store.Closes())
}

// ReturnNDays returns the simple return over the trailing n days.
// It needs n+1 closes and a positive reference price.
func (c *Computer) ReturnNDays(n int) (float64, bool) {
	closes := c.store.Closes()
	if n < 1 || len(closes) < n+1 {
		return 0, false
	}
	ref := closes[len(closes)-(n+1)]
	if ref <= 0 {
		return 0, false
	}
	return closes[len(closes)-1]/ref - 1, true
}

// DrawdownFromHigh returns the decline of the latest close from the highest
// close inside the trailing lookback span. The result is <= 0.
func (c *Computer) DrawdownFromHigh(lookback int) (float64, bool) {
	closes := c.store.Closes()
	if lookback < 1 || len(closes) < lookback {
		return 0, false
	}
	span := closes[len(closes)-lookback:]
	high := span[0]
	for _, p := range span {
		if p > high {
			high = p
		}
	}
	if high <= 0 {
		return 0, false
	}
	return closes[len(closes)-1]/high - 1, true
}

// VolRatio normalizes the current realized vol against the trailing median of
// the vol window. Below minMedianObs observations the baseline is not trusted
// and the ratio falls back to 1.0; a degenerate (<= 0) median falls back to
// the current value as its own baseline.
func (c *Computer) VolRatio(current float64) float64 {
	vols := c.store.Vols()
	if len(vols) < minMedianObs {
		return 1.0
	}
	med := median(vols)
	if med <= 0 {
		med = current
	}
	if med <= 0 {
		return 1.0
	}
	return current / med
}

func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
