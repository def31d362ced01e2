// Package regime classifies market conditions into an ordered set of risk
// tiers and applies asymmetric transition hysteresis: de-risking is immediate,
// re-risking moves at most one tier per cycle.
package regime

import "fmt"

// Regime is a discrete market-risk tier. The order defines risk direction:
// Calm < Alert < Stress < Panic.
type Regime int

const (
	Calm Regime = iota
	Alert
	Stress
	Panic
)

// String returns the tier name.
func (r Regime) String() string {
	switch r {
	case Calm:
		return "Calm"
	case Alert:
		return "Alert"
	case Stress:
		return "Stress"
	case Panic:
		return "Panic"
	default:
		return "UNKNOWN"
	}
}

// Parse maps a tier name to its Regime.
func Parse(name string) (Regime, error) {
	switch name {
	case "Calm":
		return Calm, nil
	case "Alert":
		return Alert, nil
	case "Stress":
		return Stress, nil
	case "Panic":
		return Panic, nil
	default:
		return Calm, fmt.Errorf("unknown regime %q", name)
	}
}

// Config holds the classification thresholds and hysteresis options.
type Config struct {
	PanicVolRatio  float64 // vol ratio above which Panic triggers
	PanicReturn20  float64 // 20-day return at or below which Panic triggers
	StressVolRatio float64
	StressDaysBelow int
	StressRSI      float64
	AlertVolRatio  float64
	AlertDaysBelow int
	AlertRSI       float64
	CalmVolRatio   float64
	CalmRSI        float64

	// EscalationClamp limits escalation to one tier per cycle. Off by
	// default: any-size escalation is permitted (fast de-risk).
	EscalationClamp bool

	// BearOverlay enables the informational bear flag.
	BearOverlay  bool
	BearDrawdown float64 // trailing 126-day drawdown at or below which bear sets
}

// DefaultConfig returns the canonical thresholds.
func DefaultConfig() Config {
	return Config{
		PanicVolRatio:   1.60,
		PanicReturn20:   -0.08,
		StressVolRatio:  1.40,
		StressDaysBelow: 4,
		StressRSI:       40,
		AlertVolRatio:   1.25,
		AlertDaysBelow:  2,
		AlertRSI:        45,
		CalmVolRatio:    1.15,
		CalmRSI:         50,
		BearDrawdown:    -0.12,
	}
}

// Inputs is the per-cycle signal bundle the classifier reads.
type Inputs struct {
	Close               float64
	SMA50               float64
	SMA200              float64
	RSI                 float64
	VolRatio            float64
	Return20            float64
	DaysBelowSMA50      int
	DrawdownFromHigh126 float64
}

// Classifier holds the authoritative regime and applies the transition rules.
type Classifier struct {
	cfg     Config
	current Regime
	bear    bool
}

// NewClassifier creates a classifier starting in Calm.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg, current: Calm}
}

// Current returns the authoritative regime.
func (c *Classifier) Current() Regime {
	return c.current
}

// Bear returns the derived bear overlay flag.
func (c *Classifier) Bear() bool {
	return c.bear
}

// Evaluate runs one classification cycle: the ordered rule list picks a
// candidate (first match wins), hysteresis clamps the transition, and the
// bear overlay is refreshed. It returns the new authoritative regime.
func (c *Classifier) Evaluate(in Inputs) Regime {
	c.current = clampTier(c.current, c.candidate(in), c.cfg.EscalationClamp)

	if c.cfg.BearOverlay {
		c.bear = in.Close < in.SMA200 &&
			in.DrawdownFromHigh126 <= c.cfg.BearDrawdown &&
			c.current >= Stress
	}
	return c.current
}

// candidate evaluates the rule list top to bottom. Priority is fixed:
// Panic beats Stress beats Alert beats Calm; no rule matching keeps the
// current regime.
func (c *Classifier) candidate(in Inputs) Regime {
	cfg := c.cfg
	switch {
	case in.VolRatio > cfg.PanicVolRatio || in.Return20 <= cfg.PanicReturn20:
		return Panic
	case in.VolRatio >= cfg.StressVolRatio && in.DaysBelowSMA50 >= cfg.StressDaysBelow && in.RSI < cfg.StressRSI:
		return Stress
	case in.VolRatio >= cfg.AlertVolRatio && in.DaysBelowSMA50 >= cfg.AlertDaysBelow && in.RSI < cfg.AlertRSI:
		return Alert
	case in.VolRatio < cfg.CalmVolRatio && in.Close >= in.SMA50 && in.RSI > cfg.CalmRSI:
		return Calm
	default:
		return c.current
	}
}

// clampTier applies the hysteresis rule: escalation is accepted immediately
// (or limited to one tier when clampUp is set), de-escalation moves at most
// one tier per cycle.
func clampTier(current, proposed Regime, clampUp bool) Regime {
	if proposed > current {
		if clampUp && proposed > current+1 {
			return current + 1
		}
		return proposed
	}
	if proposed < current-1 {
		return current - 1
	}
	return proposed
}
