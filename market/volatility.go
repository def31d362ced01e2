package market

import "math"

// TradingDays is the annualization base for daily observations.
const TradingDays = 252

// volWindow is the number of daily log returns in the realized-vol estimate.
const volWindow = 20

// RealizedVol20 returns the annualized 20-day realized volatility in percent:
// the sample standard deviation of the most recent 20 daily log returns,
// scaled by sqrt(252)*100. It needs at least 21 closes, all positive.
func RealizedVol20(closes []float64) (float64, bool) {
	if len(closes) < volWindow+1 {
		return 0, false
	}
	prices := closes[len(closes)-(volWindow+1):]
	for _, p := range prices {
		if p <= 0 {
			return 0, false
		}
	}

	returns := make([]float64, 0, volWindow)
	for i := 1; i < len(prices); i++ {
		returns = append(returns, math.Log(prices[i]/prices[i-1]))
	}

	return sampleStdev(returns) * math.Sqrt(TradingDays) * 100, true
}

// RollingVol20 computes the realized-vol series across a seeded close history,
// one value per trailing 21-close span. Used to warm the vol window before
// live cycles start.
func RollingVol20(closes []float64) []float64 {
	if len(closes) < volWindow+1 {
		return nil
	}
	out := make([]float64, 0, len(closes)-volWindow)
	for end := volWindow + 1; end <= len(closes); end++ {
		if v, ok := RealizedVol20(closes[:end]); ok {
			out = append(out, v)
		}
	}
	return out
}

// sampleStdev returns the sample (n-1) standard deviation.
func sampleStdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	sumSq := 0.0
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}
