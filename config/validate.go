package config

import (
	"errors"
	"fmt"

	"regime-allocator-go/portfolio"
	"regime-allocator-go/regime"
)

var regimeNames = []string{"Calm", "Alert", "Stress", "Panic"}

// Validate ensures the configuration is internally consistent.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}

	if cfg.Policy.UseGovernor {
		g := cfg.Governor
		if g.Buffer < 0 || g.Target <= g.Buffer {
			return errors.New("governor.target must exceed governor.buffer")
		}
		if g.Floor <= 0 || g.Floor > 1 {
			return errors.New("governor.floor must be in (0, 1]")
		}
	}

	a := cfg.Allocation
	if len(a.Assets) == 0 {
		return errors.New("allocation.assets is required")
	}
	if a.EquityAsset == "" {
		return errors.New("allocation.equityAsset is required")
	}
	for _, name := range regimeNames {
		pct, ok := a.Budgets[name]
		if !ok {
			return fmt.Errorf("allocation.budgets missing regime %s", name)
		}
		if pct <= 0 || pct > 1 {
			return fmt.Errorf("allocation.budgets[%s] must be in (0, 1]", name)
		}
		if _, ok := a.Weights[name]; !ok {
			return fmt.Errorf("allocation.weights missing regime %s", name)
		}
	}
	for _, asset := range a.Assets {
		lev, ok := a.Leverage[asset]
		if !ok || lev <= 0 {
			return fmt.Errorf("allocation.leverage[%s] must be > 0", asset)
		}
	}
	if a.CalmFloorPct < 0 {
		return errors.New("allocation.calmFloorPct must be >= 0")
	}
	if a.BrakeThreshold < 1 {
		return errors.New("allocation.brakeThreshold must be >= 1")
	}
	if a.BrakeMultiplier <= 0 || a.BrakeMultiplier > 1 {
		return errors.New("allocation.brakeMultiplier must be in (0, 1]")
	}
	if a.GateEpsilon < 0 {
		return errors.New("allocation.gateEpsilon must be >= 0")
	}

	r := cfg.Regime
	if r.PanicVolRatio <= r.StressVolRatio || r.StressVolRatio <= r.AlertVolRatio {
		return errors.New("regime vol-ratio thresholds must be strictly ordered: panic > stress > alert")
	}
	if r.CalmVolRatio <= 0 {
		return errors.New("regime.calmVolRatio must be > 0")
	}

	if cfg.Backtest.InitialCash <= 0 {
		return errors.New("backtest.initialCash must be > 0")
	}
	return nil
}

// ClassifierConfig converts the YAML thresholds into the classifier config.
func (c AppConfig) ClassifierConfig() regime.Config {
	r := c.Regime
	return regime.Config{
		PanicVolRatio:   r.PanicVolRatio,
		PanicReturn20:   r.PanicReturn20,
		StressVolRatio:  r.StressVolRatio,
		StressDaysBelow: r.StressDaysBelow,
		StressRSI:       r.StressRSI,
		AlertVolRatio:   r.AlertVolRatio,
		AlertDaysBelow:  r.AlertDaysBelow,
		AlertRSI:        r.AlertRSI,
		CalmVolRatio:    r.CalmVolRatio,
		CalmRSI:         r.CalmRSI,
		EscalationClamp: c.Policy.EscalationClamp,
		BearOverlay:     c.Policy.BearOverlay,
		BearDrawdown:    r.BearDrawdown,
	}
}

// AllocatorConfig converts the YAML allocation section into the allocator
// config. Regime names were validated beforehand.
func (c AppConfig) AllocatorConfig() (portfolio.Config, error) {
	a := c.Allocation

	budgets := make(portfolio.BudgetTable, len(a.Budgets))
	weights := make(portfolio.StructuralWeights, len(a.Weights))
	for name, pct := range a.Budgets {
		r, err := regime.Parse(name)
		if err != nil {
			return portfolio.Config{}, err
		}
		budgets[r] = pct
	}
	for name, w := range a.Weights {
		r, err := regime.Parse(name)
		if err != nil {
			return portfolio.Config{}, err
		}
		weights[r] = portfolio.Weights(w)
	}

	var bearWeights portfolio.Weights
	if len(a.BearWeights) > 0 {
		bearWeights = portfolio.Weights(a.BearWeights)
	}

	return portfolio.Config{
		Budgets:         budgets,
		Weights:         weights,
		BearWeights:     bearWeights,
		Assets:          a.Assets,
		Leverage:        a.Leverage,
		CalmFloorPct:    a.CalmFloorPct,
		BrakeThreshold:  a.BrakeThreshold,
		BrakeMultiplier: a.BrakeMultiplier,
		EquityAsset:     a.EquityAsset,
		GateEpsilon:     a.GateEpsilon,
		AllowShort:      c.Policy.AllowShort,
	}, nil
}
