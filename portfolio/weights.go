// Package portfolio converts a regime risk budget into per-asset target
// exposures under a leverage constraint.
package portfolio

import "regime-allocator-go/regime"

// BudgetTable maps each regime to its base margin budget as a fraction of
// equity.
type BudgetTable map[regime.Regime]float64

// Weights maps asset keys to structural weights for one regime. Weights need
// not sum to 1; the residual stays in cash. Negative weights express short
// exposure.
type Weights map[string]float64

// StructuralWeights maps each regime to its structural weight set.
type StructuralWeights map[regime.Regime]Weights

// DefaultBudgetTable returns the canonical regime budgets.
func DefaultBudgetTable() BudgetTable {
	return BudgetTable{
		regime.Calm:   0.12,
		regime.Alert:  0.09,
		regime.Stress: 0.06,
		regime.Panic:  0.04,
	}
}

// DefaultStructuralWeights returns the canonical structural weights.
func DefaultStructuralWeights() StructuralWeights {
	return StructuralWeights{
		regime.Calm:   {"spy": 0.55, "tlt": 0.35, "gld": 0.10},
		regime.Alert:  {"spy": 0.45, "tlt": 0.35, "gld": 0.10},
		regime.Stress: {"spy": 0.30, "tlt": 0.35, "gld": 0.10},
		regime.Panic:  {"spy": 0.20, "tlt": 0.30, "gld": 0.10},
	}
}

// DefaultAssets returns the canonical emission order.
func DefaultAssets() []string {
	return []string{"spy", "tlt", "gld"}
}
