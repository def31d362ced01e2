package sim

import (
	"errors"
	"time"

	"regime-allocator-go/internal/engine"
	"regime-allocator-go/market"
)

// Runner wires the host-side collaborators around the engine: indicator
// maintenance, daily signal cycles, weekly rebalances and the simulated
// account. One Runner drives one backtest or paper-trading session.
type Runner struct {
	SignalAsset string
	Engine      *engine.Engine
	Account     *Account

	// Monthly is an optional cash contribution applied on the first
	// session of each calendar month.
	Monthly float64

	sma50  *market.SMA
	sma200 *market.SMA
	rsi    *market.RSI

	lastMonth time.Month
	hasMonth  bool

	stats Stats
}

// Stats summarizes one session.
type Stats struct {
	Days        int
	Rebalances  int
	Contributed float64
	FinalEquity float64
	PeakEquity  float64
	MaxDrawdown float64
}

// NewRunner creates a runner with standard 50/200-day SMAs and Wilder
// RSI(14) on the signal asset.
func NewRunner(signalAsset string, eng *engine.Engine, account *Account, monthly float64) (*Runner, error) {
	if eng == nil || account == nil {
		return nil, errors.New("sim: engine and account are required")
	}
	if signalAsset == "" {
		return nil, errors.New("sim: signal asset is required")
	}
	return &Runner{
		SignalAsset: signalAsset,
		Engine:      eng,
		Account:     account,
		Monthly:     monthly,
		sma50:       market.NewSMA(50),
		sma200:      market.NewSMA(200),
		rsi:         market.NewRSI(14),
	}, nil
}

// Seed replays historical signal-asset closes into the engine windows and
// the host indicators without running live cycles, so classification is live
// from the first real session.
func (r *Runner) Seed(closes []float64) {
	r.Engine.Seed(closes)
	for _, c := range closes {
		if c <= 0 {
			continue
		}
		r.sma50.Update(c)
		r.sma200.Update(c)
		r.rsi.Update(c)
	}
}

// OnDay processes one trading session: marks prices, updates indicators,
// runs the daily signal cycle and, on Fridays, the weekly rebalance.
func (r *Runner) OnDay(t time.Time, closes map[string]float64) error {
	signalClose, ok := closes[r.SignalAsset]
	if !ok {
		return errors.New("sim: missing close for signal asset " + r.SignalAsset)
	}

	if r.Monthly > 0 {
		if r.hasMonth && t.Month() != r.lastMonth {
			r.Account.Contribute(r.Monthly)
			r.stats.Contributed += r.Monthly
		}
		r.lastMonth = t.Month()
		r.hasMonth = true
	}

	for asset, price := range closes {
		r.Account.MarkPrice(asset, price)
	}

	r.sma50.Update(signalClose)
	r.sma200.Update(signalClose)
	r.rsi.Update(signalClose)

	obs := engine.Observation{
		Close:           signalClose,
		Equity:          r.Account.Equity(),
		SMA50:           r.sma50.Value(),
		SMA200:          r.sma200.Value(),
		RSI:             r.rsi.Value(),
		IndicatorsReady: r.sma50.IsReady() && r.sma200.IsReady() && r.rsi.IsReady(),
	}
	r.Engine.UpdateSignals(obs)

	if t.Weekday() == time.Friday {
		if targets, ok := r.Engine.Rebalance(obs, engine.PeriodOf(t)); ok {
			if err := r.Account.SetTargets(targets); err != nil {
				return err
			}
			r.stats.Rebalances++
		}
	}

	r.trackStats()
	return nil
}

func (r *Runner) trackStats() {
	eq := r.Account.Equity()
	r.stats.Days++
	r.stats.FinalEquity = eq
	if eq > r.stats.PeakEquity {
		r.stats.PeakEquity = eq
	}
	if r.stats.PeakEquity > 0 {
		dd := 1 - eq/r.stats.PeakEquity
		if dd > r.stats.MaxDrawdown {
			r.stats.MaxDrawdown = dd
		}
	}
}

// Stats returns the session summary so far.
func (r *Runner) Stats() Stats {
	return r.stats
}
