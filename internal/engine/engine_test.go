package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regime-allocator-go/monitor"
	"regime-allocator-go/portfolio"
	"regime-allocator-go/regime"
	"regime-allocator-go/risk"
)

func newTestEngine(t *testing.T) (*Engine, *monitor.MockRecorder) {
	t.Helper()
	alloc, err := portfolio.NewAllocator(portfolio.DefaultConfig())
	require.NoError(t, err)

	rec := monitor.NewMockRecorder()
	e, err := New(Config{UseGovernor: true}, Components{
		Classifier: regime.NewClassifier(regime.DefaultConfig()),
		Governor:   risk.NewGovernor(0.12, 0.25, 0.20),
		Allocator:  alloc,
		Recorder:   rec,
	})
	require.NoError(t, err)
	return e, rec
}

// calmObs is a benign daily observation.
func calmObs(close, equity float64) Observation {
	return Observation{
		Close:           close,
		Equity:          equity,
		SMA50:           close - 1,
		SMA200:          close,
		RSI:             60,
		IndicatorsReady: true,
	}
}

func TestNew_RequiredComponents(t *testing.T) {
	_, err := New(Config{}, Components{})
	assert.Error(t, err)

	alloc, err := portfolio.NewAllocator(portfolio.DefaultConfig())
	require.NoError(t, err)
	_, err = New(Config{UseGovernor: true}, Components{
		Classifier: regime.NewClassifier(regime.DefaultConfig()),
		Allocator:  alloc,
	})
	assert.Error(t, err, "governor must be present when enabled")
}

func TestEngine_WarmupRetainsRegime(t *testing.T) {
	e, _ := newTestEngine(t)

	// Too few closes for realized vol: classification must be skipped and
	// the initial Calm regime retained, even on a crash-like day.
	for i := 0; i < 10; i++ {
		e.UpdateSignals(Observation{
			Close: 100 - float64(i)*3, Equity: 5000,
			SMA50: 100, SMA200: 100, RSI: 20, IndicatorsReady: true,
		})
	}
	assert.Equal(t, regime.Calm, e.Regime())
}

func TestEngine_IndicatorsNotReadySkipsClassification(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Seed(flatCloses(252, 100))

	e.UpdateSignals(Observation{Close: 50, Equity: 5000, IndicatorsReady: false})
	assert.Equal(t, regime.Calm, e.Regime(), "crash close without ready indicators must not classify")
}

func TestEngine_Seed(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Seed(alternating(252))

	// One live observation is enough for a full snapshot after seeding.
	e.UpdateSignals(calmObs(100, 5000))
	assert.Equal(t, regime.Calm, e.Regime())
}

func TestEngine_RebalancePeriodIdempotent(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Seed(flatCloses(252, 100))
	e.UpdateSignals(calmObs(100, 5000))

	obs := calmObs(100, 5000)
	_, ok := e.Rebalance(obs, 202601)
	require.True(t, ok)

	_, ok = e.Rebalance(obs, 202601)
	assert.False(t, ok, "second invocation in the same period must be a no-op")
}

func TestEngine_NonPositiveEquityAbortsWithoutConsumingPeriod(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Seed(flatCloses(252, 100))
	e.UpdateSignals(calmObs(100, 5000))

	_, ok := e.Rebalance(calmObs(100, 0), 202602)
	require.False(t, ok)

	// A corrected call in the same period still rebalances.
	_, ok = e.Rebalance(calmObs(100, 5000), 202602)
	assert.True(t, ok)
}

func TestEngine_GateSkipStillConsumesPeriod(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Seed(flatCloses(252, 100))
	e.UpdateSignals(calmObs(100, 5000))

	_, ok := e.Rebalance(calmObs(100, 5000), 202603)
	require.True(t, ok)

	// Nothing changed: the gate suppresses the emission but the period
	// marker still advances.
	_, ok = e.Rebalance(calmObs(100, 5000), 202604)
	assert.False(t, ok)
	_, ok = e.Rebalance(calmObs(100, 5000), 202604)
	assert.False(t, ok)
}

func TestEngine_CrashScenario(t *testing.T) {
	e, rec := newTestEngine(t)

	// 252 flat sessions at 100, then a 20-day slide to 80.
	e.Seed(flatCloses(252, 100))
	e.UpdateSignals(calmObs(100, 5000))

	baseline, ok := e.Rebalance(calmObs(100, 5000), 202610)
	require.True(t, ok)
	calmSpy := baseline[0].Fraction
	assert.InDelta(t, 0.55*0.12*20, calmSpy, 1e-9)

	for i := 1; i <= 20; i++ {
		close := 100 - float64(i)
		e.UpdateSignals(Observation{
			Close:           close,
			Equity:          5000 * close / 100,
			SMA50:           100,
			SMA200:          100,
			RSI:             25,
			IndicatorsReady: true,
		})
	}

	assert.Equal(t, regime.Panic, e.Regime(), "a -20% twenty-day return must escalate to Panic")
	assert.InDelta(t, 0.20, rec.Gauges[monitor.MetricDrawdown], 1e-9)

	snap, ok := e.LastSnapshot()
	require.True(t, ok)
	assert.InDelta(t, -0.20, snap.Return20, 1e-9)
	assert.Equal(t, 20, snap.DaysBelowSMA50)

	targets, ok := e.Rebalance(Observation{
		Close: 80, Equity: 4000, SMA50: 100, SMA200: 100, RSI: 25, IndicatorsReady: true,
	}, 202611)
	require.True(t, ok)
	require.Len(t, targets, 3)

	panicSpy := targets[0].Fraction
	assert.Positive(t, panicSpy)
	assert.Less(t, panicSpy, calmSpy, "Panic plus drawdown must shrink the equity target")
	assert.Less(t, rec.Gauges[monitor.MetricRiskScale], 1.0)
	assert.Equal(t, float64(regime.Panic), rec.Gauges[monitor.MetricRegimeStage])
	assert.Equal(t, 2, rec.Counters[monitor.MetricRebalances])
}

func TestPeriodOf(t *testing.T) {
	// Both days fall in ISO week 2 of 2026.
	mon := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	fri := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, PeriodOf(mon), PeriodOf(fri))

	nextFri := time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)
	assert.NotEqual(t, PeriodOf(fri), PeriodOf(nextFri))
}

func flatCloses(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

func alternating(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100
		if i%2 == 1 {
			out[i] = 101
		}
	}
	return out
}
