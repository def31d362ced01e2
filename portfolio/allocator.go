package portfolio

import (
	"errors"
	"fmt"
	"math"

	"regime-allocator-go/regime"
)

// ErrNonPositiveEquity aborts a rebalance cycle; no targets are emitted.
var ErrNonPositiveEquity = errors.New("portfolio: non-positive equity")

// multiplierEpsilon is the negligible change below which the brake
// multiplier is considered unchanged by the rebalance gate.
const multiplierEpsilon = 1e-9

// Target is one asset's desired exposure as a fraction of equity. Targets
// are produced fresh each rebalance and handed to the execution collaborator.
type Target struct {
	Asset    string
	Fraction float64
}

// Config parameterizes the allocator.
type Config struct {
	Budgets BudgetTable
	Weights StructuralWeights

	// Assets fixes the emission order of targets.
	Assets []string

	// Leverage is the per-asset leverage multiple.
	Leverage map[string]float64

	// CalmFloorPct is the recovery participation floor applied in Calm.
	CalmFloorPct float64

	// BrakeThreshold and BrakeMultiplier implement the extended-calm brake:
	// when close > BrakeThreshold * sma200 in Calm, the equity asset's weight
	// is multiplied by BrakeMultiplier. Freed allocation becomes cash.
	BrakeThreshold  float64
	BrakeMultiplier float64

	// EquityAsset is the asset the brake (and bear overlay weights) act on.
	EquityAsset string

	// GateEpsilon is the minimum effective-budget change that forces a
	// rebalance when the regime is unchanged.
	GateEpsilon float64

	// AllowShort permits negative target fractions. When off, negative
	// weights are clamped to zero.
	AllowShort bool

	// BearWeights, when non-nil, replaces the regime's structural weights
	// while the bear overlay is set.
	BearWeights Weights
}

// DefaultConfig returns the canonical allocator parameters.
func DefaultConfig() Config {
	return Config{
		Budgets:         DefaultBudgetTable(),
		Weights:         DefaultStructuralWeights(),
		Assets:          DefaultAssets(),
		Leverage:        map[string]float64{"spy": 20, "tlt": 20, "gld": 20},
		CalmFloorPct:    0.07,
		BrakeThreshold:  1.05,
		BrakeMultiplier: 0.85,
		EquityAsset:     "spy",
		GateEpsilon:     0.01,
	}
}

// Decision is the outcome of one rebalance evaluation.
type Decision struct {
	Targets      []Target
	EffectivePct float64
	MarginBudget float64
	Multiplier   float64
	Braked       bool
}

// Allocator owns the rebalance gate state.
type Allocator struct {
	cfg Config

	lastRegime    regime.Regime
	lastEffective float64
	lastMult      float64
	hasLast       bool
}

// NewAllocator creates an allocator. The gate starts open: the first
// evaluation always emits targets.
func NewAllocator(cfg Config) (*Allocator, error) {
	if len(cfg.Assets) == 0 {
		return nil, errors.New("portfolio: no assets configured")
	}
	if cfg.EquityAsset == "" {
		return nil, errors.New("portfolio: equity asset is required")
	}
	for _, asset := range cfg.Assets {
		if lev, ok := cfg.Leverage[asset]; !ok || lev <= 0 {
			return nil, fmt.Errorf("portfolio: asset %s needs positive leverage", asset)
		}
	}
	return &Allocator{cfg: cfg, lastRegime: regime.Calm}, nil
}

// Allocate evaluates one rebalance cycle. riskScale is the governor output
// (pass 1.0 when the governor is disabled); bear is the classifier's overlay
// flag. It returns the decision and whether the change gate admitted it; a
// gated cycle returns ok=false and leaves the gate state untouched.
func (a *Allocator) Allocate(r regime.Regime, riskScale, equity, close, sma200 float64, bear bool) (Decision, bool, error) {
	if equity <= 0 {
		return Decision{}, false, ErrNonPositiveEquity
	}

	basePct := a.cfg.Budgets[r]
	effectivePct := basePct * riskScale

	// Recovery participation floor, Calm only. The floor never exceeds the
	// regime's own ceiling.
	if r == regime.Calm {
		effectivePct = math.Max(effectivePct, a.cfg.CalmFloorPct)
		effectivePct = math.Min(effectivePct, basePct)
	}

	braked := r == regime.Calm && sma200 > 0 && close > a.cfg.BrakeThreshold*sma200
	multiplier := 1.0
	if braked {
		multiplier = a.cfg.BrakeMultiplier
	}

	if !a.gateOpen(r, effectivePct, multiplier) {
		return Decision{}, false, nil
	}

	marginBudget := equity * effectivePct

	weights := a.weightsFor(r, bear)
	notionals := make([]float64, len(a.cfg.Assets))
	totalMargin := 0.0
	for i, asset := range a.cfg.Assets {
		w := weights[asset]
		if asset == a.cfg.EquityAsset {
			w *= multiplier
		}
		if w < 0 && !a.cfg.AllowShort {
			w = 0
		}
		notionals[i] = w * marginBudget * a.cfg.Leverage[asset]
		totalMargin += math.Abs(notionals[i]) / a.cfg.Leverage[asset]
	}

	// Uniform margin cap: never consume more collateral than the budget.
	if totalMargin > marginBudget && totalMargin > 0 {
		scale := marginBudget / totalMargin
		for i := range notionals {
			notionals[i] *= scale
		}
	}

	targets := make([]Target, len(a.cfg.Assets))
	for i, asset := range a.cfg.Assets {
		targets[i] = Target{Asset: asset, Fraction: notionals[i] / equity}
	}

	a.lastRegime = r
	a.lastEffective = effectivePct
	a.lastMult = multiplier
	a.hasLast = true

	return Decision{
		Targets:      targets,
		EffectivePct: effectivePct,
		MarginBudget: marginBudget,
		Multiplier:   multiplier,
		Braked:       braked,
	}, true, nil
}

// gateOpen decides whether the cycle warrants a rebalance: regime change,
// material effective-budget change, or brake toggle.
func (a *Allocator) gateOpen(r regime.Regime, effectivePct, multiplier float64) bool {
	if !a.hasLast {
		return true
	}
	if r != a.lastRegime {
		return true
	}
	if math.Abs(effectivePct-a.lastEffective) >= a.cfg.GateEpsilon {
		return true
	}
	return math.Abs(multiplier-a.lastMult) > multiplierEpsilon
}

func (a *Allocator) weightsFor(r regime.Regime, bear bool) Weights {
	if bear && a.cfg.BearWeights != nil {
		return a.cfg.BearWeights
	}
	return a.cfg.Weights[r]
}
