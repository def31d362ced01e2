// Package risk scales the deployable capital budget as portfolio drawdown
// deepens.
package risk

// Governor tracks peak equity and maps the resulting drawdown to a
// continuous risk-scale multiplier in [Floor, 1.0].
//
// The response is piecewise linear: full risk up to Buffer drawdown, the
// Floor at or beyond Target drawdown, linear in between.
type Governor struct {
	Buffer float64 // drawdown below which scale stays 1.0
	Target float64 // drawdown at which scale reaches Floor
	Floor  float64 // minimum risk scale

	peak     float64
	drawdown float64
}

// NewGovernor creates a governor with the given response parameters.
func NewGovernor(buffer, target, floor float64) *Governor {
	return &Governor{Buffer: buffer, Target: target, Floor: floor}
}

// Observe updates the running peak with the latest equity and recomputes the
// current drawdown. The peak is monotonic over the account's lifetime and is
// initialized to the first observed equity. Non-positive equity leaves the
// drawdown unchanged.
func (g *Governor) Observe(equity float64) float64 {
	if equity <= 0 {
		return g.drawdown
	}
	if g.peak == 0 || equity > g.peak {
		g.peak = equity
	}
	g.drawdown = 1 - equity/g.peak
	return g.drawdown
}

// Drawdown returns the last computed drawdown.
func (g *Governor) Drawdown() float64 {
	return g.drawdown
}

// PeakEquity returns the running peak.
func (g *Governor) PeakEquity() float64 {
	return g.peak
}

// RiskScale maps the current drawdown to the risk-scale multiplier.
func (g *Governor) RiskScale() float64 {
	return g.ScaleAt(g.drawdown)
}

// ScaleAt returns the risk scale for an arbitrary drawdown.
func (g *Governor) ScaleAt(dd float64) float64 {
	if dd <= g.Buffer {
		return 1.0
	}
	if dd >= g.Target {
		return g.Floor
	}
	span := g.Target - g.Buffer
	if span <= 0 {
		return g.Floor
	}
	t := (dd - g.Buffer) / span
	scale := 1.0 - t*(1.0-g.Floor)
	if scale < g.Floor {
		return g.Floor
	}
	if scale > 1.0 {
		return 1.0
	}
	return scale
}
