// Package monitor defines the telemetry surface of the engine. Emission is
// best effort: a nil or failing recorder never blocks decision logic.
package monitor

// Metric names emitted by the engine.
const (
	MetricRegimeStage        = "regime_stage"
	MetricRealizedVol        = "realized_vol_20d_pct"
	MetricVolRatio           = "vol_ratio"
	MetricDrawdown           = "drawdown"
	MetricRiskScale          = "risk_scale"
	MetricEffectiveMarginPct = "effective_margin_pct"
	MetricExtendedCalmBrake  = "extended_calm_brake"
	MetricRebalances         = "rebalances_total"
	MetricRebalanceSkips     = "rebalance_skips_total"
)

// Recorder receives named metric observations.
type Recorder interface {
	Gauge(name string, value float64)
	Inc(name string)
}
