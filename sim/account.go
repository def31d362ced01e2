// Package sim provides the simulated execution collaborator: it converges
// holdings to the engine's target exposures and keeps equity accounting for
// backtest and paper-trading hosts.
package sim

import (
	"errors"

	"regime-allocator-go/portfolio"
)

// Account tracks cash and holdings for a simulated margin account. Notional
// positions may exceed cash; the shortfall is an implicit margin loan.
type Account struct {
	cash   float64
	units  map[string]float64
	prices map[string]float64
}

// NewAccount creates an account with the given starting cash.
func NewAccount(cash float64) *Account {
	return &Account{
		cash:   cash,
		units:  make(map[string]float64),
		prices: make(map[string]float64),
	}
}

// MarkPrice records the latest price for an asset. Non-positive prices are
// ignored.
func (a *Account) MarkPrice(asset string, price float64) {
	if price <= 0 {
		return
	}
	a.prices[asset] = price
}

// Contribute adds external cash (e.g. a scheduled deposit).
func (a *Account) Contribute(amount float64) {
	if amount <= 0 {
		return
	}
	a.cash += amount
}

// Equity returns cash plus the marked value of all holdings.
func (a *Account) Equity() float64 {
	eq := a.cash
	for asset, units := range a.units {
		eq += units * a.prices[asset]
	}
	return eq
}

// Holding returns the held units of an asset.
func (a *Account) Holding(asset string) float64 {
	return a.units[asset]
}

// Cash returns the current cash balance.
func (a *Account) Cash() float64 {
	return a.cash
}

// SetTargets converges holdings to the given fractional exposures at current
// marks. Held assets absent from the target list are liquidated. An asset
// without a marked price fails the whole call; holdings are untouched.
func (a *Account) SetTargets(targets []portfolio.Target) error {
	equity := a.Equity()
	if equity <= 0 {
		return errors.New("sim: non-positive equity")
	}
	for _, tgt := range targets {
		if a.prices[tgt.Asset] <= 0 {
			return errors.New("sim: no price for " + tgt.Asset)
		}
	}

	targeted := make(map[string]bool, len(targets))
	for _, tgt := range targets {
		targeted[tgt.Asset] = true
	}
	for asset, units := range a.units {
		if !targeted[asset] {
			a.cash += units * a.prices[asset]
			delete(a.units, asset)
		}
	}

	for _, tgt := range targets {
		price := a.prices[tgt.Asset]
		desired := tgt.Fraction * equity / price
		delta := desired - a.units[tgt.Asset]
		a.cash -= delta * price
		a.units[tgt.Asset] = desired
	}
	return nil
}
