package market

// Host-side indicator collaborators. The engine itself only consumes ready
// gated values; these implementations exist so the backtest and runner hosts
// can supply them.

// SMA is a simple moving average with readiness gating.
type SMA struct {
	window *Window
	period int
}

// NewSMA creates a simple moving average over the given period.
func NewSMA(period int) *SMA {
	return &SMA{window: NewWindow(period), period: period}
}

// Update feeds the next close.
func (s *SMA) Update(price float64) {
	s.window.Push(price)
}

// IsReady reports whether a full period of closes has been seen.
func (s *SMA) IsReady() bool {
	return s.window.Full()
}

// Value returns the current average. Zero until ready.
func (s *SMA) Value() float64 {
	if !s.IsReady() {
		return 0
	}
	sum := 0.0
	for _, v := range s.window.Values() {
		sum += v
	}
	return sum / float64(s.period)
}

// RSI implements Wilder's relative strength index.
type RSI struct {
	period  int
	prev    float64
	seen    int
	sumGain float64
	sumLoss float64
	avgGain float64
	avgLoss float64
}

// NewRSI creates a Wilder RSI over the given period.
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

// Update feeds the next close.
func (r *RSI) Update(close float64) {
	if r.seen == 0 {
		r.prev = close
		r.seen = 1
		return
	}

	change := close - r.prev
	r.prev = close
	gain, loss := 0.0, 0.0
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	if r.seen <= r.period {
		// Accumulate the first period as simple averages.
		r.sumGain += gain
		r.sumLoss += loss
		if r.seen == r.period {
			r.avgGain = r.sumGain / float64(r.period)
			r.avgLoss = r.sumLoss / float64(r.period)
		}
	} else {
		// Wilder smoothing thereafter.
		p := float64(r.period)
		r.avgGain = (r.avgGain*(p-1) + gain) / p
		r.avgLoss = (r.avgLoss*(p-1) + loss) / p
	}
	r.seen++
}

// IsReady reports whether a full period of changes has been seen.
func (r *RSI) IsReady() bool {
	return r.seen > r.period
}

// Value returns the current RSI in [0, 100]. Zero until ready.
func (r *RSI) Value() float64 {
	if !r.IsReady() {
		return 0
	}
	if r.avgLoss == 0 {
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}
