// Package engine drives the regime classification and risk-budget
// allocation cycle. The host invokes UpdateSignals once per trading day and
// Rebalance once per week; both are synchronous and single-threaded by
// contract.
package engine

import (
	"errors"
	"time"

	"regime-allocator-go/infrastructure/alert"
	"regime-allocator-go/infrastructure/logger"
	"regime-allocator-go/market"
	"regime-allocator-go/monitor"
	"regime-allocator-go/portfolio"
	"regime-allocator-go/regime"
	"regime-allocator-go/risk"
)

// closeWindowCap and volWindowCap size the rolling stores.
const (
	closeWindowCap = 252
	volWindowCap   = 252
)

// bearLookback is the drawdown span feeding the bear overlay.
const bearLookback = 126

// returnDays is the crash-trigger return span.
const returnDays = 20

// Observation is one evaluation cycle's host-supplied inputs. Indicator
// values are only read when IndicatorsReady is set.
type Observation struct {
	Close           float64
	Equity          float64
	SMA50           float64
	SMA200          float64
	RSI             float64
	IndicatorsReady bool
}

// Config holds engine options.
type Config struct {
	// UseGovernor scales the regime budget by the drawdown governor. When
	// off, hard regime ceilings apply.
	UseGovernor bool
}

// Components are the engine's collaborators. Classifier and Allocator are
// required; Governor is required when the governor is enabled; Logger,
// Recorder and Alerts are optional.
type Components struct {
	Classifier *regime.Classifier
	Governor   *risk.Governor
	Allocator  *portfolio.Allocator
	Logger     *logger.Logger
	Recorder   monitor.Recorder
	Alerts     *alert.Manager
}

// Engine owns all mutable strategy state: the rolling windows, the
// authoritative regime, the governor's peak equity and the rebalance gate.
type Engine struct {
	cfg Config

	store      *market.SeriesStore
	signals    *market.Computer
	classifier *regime.Classifier
	governor   *risk.Governor
	allocator  *portfolio.Allocator

	logger   *logger.Logger
	recorder monitor.Recorder
	alerts   *alert.Manager

	daysBelowSMA50 int
	lastPeriod     int

	lastSnap market.Snapshot
	hasSnap  bool
}

// New creates an engine.
func New(cfg Config, comp Components) (*Engine, error) {
	if comp.Classifier == nil {
		return nil, errors.New("engine: classifier is required")
	}
	if comp.Allocator == nil {
		return nil, errors.New("engine: allocator is required")
	}
	if cfg.UseGovernor && comp.Governor == nil {
		return nil, errors.New("engine: governor is required when enabled")
	}
	if comp.Logger == nil {
		comp.Logger = logger.Nop()
	}

	store := market.NewSeriesStore(closeWindowCap, volWindowCap)
	return &Engine{
		cfg:        cfg,
		store:      store,
		signals:    market.NewComputer(store),
		classifier: comp.Classifier,
		governor:   comp.Governor,
		allocator:  comp.Allocator,
		logger:     comp.Logger,
		recorder:   comp.Recorder,
		alerts:     comp.Alerts,
		lastPeriod: -1,
	}, nil
}

// PeriodOf maps a timestamp to the weekly rebalance period marker.
func PeriodOf(t time.Time) int {
	year, week := t.ISOWeek()
	return year*100 + week
}

// Seed replays historical closes into the close window and derives the
// rolling 20-day vol series into the vol window, so classification is live
// from the first cycle.
func (e *Engine) Seed(closes []float64) {
	for _, c := range closes {
		e.store.PushClose(c)
	}
	for _, v := range market.RollingVol20(e.store.Closes()) {
		e.store.PushVol(v)
	}
}

// Regime returns the current authoritative regime.
func (e *Engine) Regime() regime.Regime {
	return e.classifier.Current()
}

// Bear returns the classifier's bear overlay flag.
func (e *Engine) Bear() bool {
	return e.classifier.Bear()
}

// LastSnapshot returns the most recent complete signal snapshot. ok is false
// until the first post-warm-up cycle.
func (e *Engine) LastSnapshot() (market.Snapshot, bool) {
	return e.lastSnap, e.hasSnap
}

// UpdateSignals runs one daily cycle: ingest the close, refresh drawdown
// tracking, and re-classify the regime. Warm-up cycles (insufficient history
// or indicators not ready) leave the regime unchanged.
func (e *Engine) UpdateSignals(obs Observation) {
	e.store.PushClose(obs.Close)

	if e.governor != nil {
		dd := e.governor.Observe(obs.Equity)
		e.gauge(monitor.MetricDrawdown, dd)
	}

	if !obs.IndicatorsReady {
		return
	}

	if obs.Close < obs.SMA50 {
		e.daysBelowSMA50++
	} else {
		e.daysBelowSMA50 = 0
	}

	rv20, ok := e.signals.RealizedVol20()
	if !ok {
		return
	}
	ret20, ok := e.signals.ReturnNDays(returnDays)
	if !ok {
		return
	}

	e.store.PushVol(rv20)
	volRatio := e.signals.VolRatio(rv20)
	dd126, _ := e.signals.DrawdownFromHigh(bearLookback)

	snap := market.Snapshot{
		Close:            obs.Close,
		SMA50:            obs.SMA50,
		SMA200:           obs.SMA200,
		RSI:              obs.RSI,
		RealizedVol20:    rv20,
		Return20:         ret20,
		VolRatio:         volRatio,
		DaysBelowSMA50:   e.daysBelowSMA50,
		DrawdownFromHigh: dd126,
	}
	e.lastSnap = snap
	e.hasSnap = true

	prev := e.classifier.Current()
	current := e.classifier.Evaluate(regime.Inputs{
		Close:               snap.Close,
		SMA50:               snap.SMA50,
		SMA200:              snap.SMA200,
		RSI:                 snap.RSI,
		VolRatio:            snap.VolRatio,
		Return20:            snap.Return20,
		DaysBelowSMA50:      snap.DaysBelowSMA50,
		DrawdownFromHigh126: snap.DrawdownFromHigh,
	})

	e.gauge(monitor.MetricRegimeStage, float64(current))
	e.gauge(monitor.MetricRealizedVol, rv20)
	e.gauge(monitor.MetricVolRatio, volRatio)

	if current != prev {
		e.onRegimeChange(prev, current, volRatio, ret20)
	}
}

// Rebalance runs one weekly cycle and returns the target exposures for the
// execution collaborator. The period marker guarantees at most one rebalance
// per period; a gated or aborted cycle returns ok=false.
func (e *Engine) Rebalance(obs Observation, period int) ([]portfolio.Target, bool) {
	if period == e.lastPeriod {
		return nil, false
	}

	riskScale := 1.0
	if e.cfg.UseGovernor {
		riskScale = e.governor.RiskScale()
		e.gauge(monitor.MetricRiskScale, riskScale)
	}

	decision, ok, err := e.allocator.Allocate(
		e.classifier.Current(), riskScale, obs.Equity, obs.Close, obs.SMA200, e.classifier.Bear())
	if err != nil {
		// Non-positive equity: abort the cycle without advancing the
		// period marker so a corrected host call can still rebalance.
		e.logger.LogError(err, map[string]interface{}{
			"regime": e.classifier.Current().String(),
			"equity": obs.Equity,
		})
		return nil, false
	}

	e.lastPeriod = period

	if !ok {
		e.inc(monitor.MetricRebalanceSkips)
		e.logger.LogRebalance("rebalance_skip", map[string]interface{}{
			"regime": e.classifier.Current().String(),
			"reason": "change gate",
		})
		return nil, false
	}

	e.gauge(monitor.MetricEffectiveMarginPct, decision.EffectivePct)
	e.gauge(monitor.MetricExtendedCalmBrake, boolGauge(decision.Braked))
	e.inc(monitor.MetricRebalances)

	e.logger.LogRebalance("rebalance", map[string]interface{}{
		"regime":        e.classifier.Current().String(),
		"effective_pct": decision.EffectivePct,
		"margin_budget": decision.MarginBudget,
		"braked":        decision.Braked,
		"targets":       len(decision.Targets),
	})

	return decision.Targets, true
}

func (e *Engine) onRegimeChange(prev, current regime.Regime, volRatio, ret20 float64) {
	fields := map[string]interface{}{
		"from":       prev.String(),
		"to":         current.String(),
		"vol_ratio":  volRatio,
		"return_20d": ret20,
	}
	e.logger.LogRegime("regime_change", fields)

	if e.alerts == nil {
		return
	}
	if current > prev {
		_ = e.alerts.SendWarning("regime escalated to "+current.String(), fields)
	} else {
		_ = e.alerts.SendInfo("regime de-escalated to "+current.String(), fields)
	}
}

func (e *Engine) gauge(name string, v float64) {
	if e.recorder != nil {
		e.recorder.Gauge(name, v)
	}
}

func (e *Engine) inc(name string) {
	if e.recorder != nil {
		e.recorder.Inc(name)
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
