package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PromRecorder exports engine telemetry as Prometheus metrics.
type PromRecorder struct {
	registry *prometheus.Registry
	gauges   map[string]prometheus.Gauge
	counters map[string]prometheus.Counter
}

// NewPromRecorder creates a recorder with its own registry. All engine
// metric names are pre-registered under the given namespace.
func NewPromRecorder(namespace string) *PromRecorder {
	r := &PromRecorder{
		registry: prometheus.NewRegistry(),
		gauges:   make(map[string]prometheus.Gauge),
		counters: make(map[string]prometheus.Counter),
	}

	gaugeHelp := map[string]string{
		MetricRegimeStage:        "Current regime stage (0=Calm 1=Alert 2=Stress 3=Panic)",
		MetricRealizedVol:        "Annualized 20-day realized volatility in percent",
		MetricVolRatio:           "Realized vol over trailing median baseline",
		MetricDrawdown:           "Portfolio drawdown from peak equity",
		MetricRiskScale:          "Drawdown governor risk scale",
		MetricEffectiveMarginPct: "Effective margin budget as fraction of equity",
		MetricExtendedCalmBrake:  "Extended-calm brake active (0/1)",
	}
	for name, help := range gaugeHelp {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
		r.registry.MustRegister(g)
		r.gauges[name] = g
	}

	counterHelp := map[string]string{
		MetricRebalances:     "Rebalance decisions emitted",
		MetricRebalanceSkips: "Rebalance cycles suppressed by the change gate",
	}
	for name, help := range counterHelp {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
		r.registry.MustRegister(c)
		r.counters[name] = c
	}

	return r
}

// Registry exposes the underlying registry for the metrics server.
func (r *PromRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// Gauge sets a gauge value. Unknown names are dropped.
func (r *PromRecorder) Gauge(name string, value float64) {
	if g, ok := r.gauges[name]; ok {
		g.Set(value)
	}
}

// Inc increments a counter. Unknown names are dropped.
func (r *PromRecorder) Inc(name string) {
	if c, ok := r.counters[name]; ok {
		c.Inc()
	}
}
