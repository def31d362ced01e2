package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regime-allocator-go/internal/engine"
	"regime-allocator-go/portfolio"
	"regime-allocator-go/regime"
	"regime-allocator-go/risk"
)

func newRunner(t *testing.T, monthly float64) *Runner {
	t.Helper()
	alloc, err := portfolio.NewAllocator(portfolio.DefaultConfig())
	require.NoError(t, err)
	eng, err := engine.New(engine.Config{UseGovernor: true}, engine.Components{
		Classifier: regime.NewClassifier(regime.DefaultConfig()),
		Governor:   risk.NewGovernor(0.12, 0.25, 0.20),
		Allocator:  alloc,
	})
	require.NoError(t, err)

	r, err := NewRunner("spy", eng, NewAccount(5000), monthly)
	require.NoError(t, err)
	return r
}

func TestRunner_FullSession(t *testing.T) {
	r := newRunner(t, 0)

	// ~15 months of flat weekday sessions: enough to warm the 200-day SMA
	// and trigger weekly rebalances.
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sessions := 0
	for sessions < 320 {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			err := r.OnDay(day, map[string]float64{"spy": 100, "tlt": 50, "gld": 80})
			require.NoError(t, err)
			sessions++
		}
		day = day.AddDate(0, 0, 1)
	}

	stats := r.Stats()
	assert.Equal(t, 320, stats.Days)
	assert.GreaterOrEqual(t, stats.Rebalances, 1, "warm indicators must produce at least one rebalance")
	// Flat prices: rebalancing must not create or destroy equity.
	assert.InDelta(t, 5000, stats.FinalEquity, 1e-6)
	// Calm baseline exposure: 0.55 * 0.12 * 20 of equity in spy.
	assert.InDelta(t, 0.55*0.12*20*5000/100, r.Account.Holding("spy"), 1e-6)
}

func TestRunner_MonthlyContribution(t *testing.T) {
	r := newRunner(t, 200)

	// Two sessions in January, one in February: one month boundary.
	require.NoError(t, r.OnDay(time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC), map[string]float64{"spy": 100}))
	require.NoError(t, r.OnDay(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), map[string]float64{"spy": 100}))
	require.NoError(t, r.OnDay(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), map[string]float64{"spy": 100}))

	assert.InDelta(t, 200, r.Stats().Contributed, 1e-9)
	assert.InDelta(t, 5200, r.Account.Equity(), 1e-9)
}

func TestRunner_SeedMakesFirstSessionLive(t *testing.T) {
	r := newRunner(t, 0)

	seed := make([]float64, 252)
	for i := range seed {
		seed[i] = 100
	}
	r.Seed(seed)

	// A Friday right after seeding: indicators and windows are warm, so
	// the very first session can rebalance.
	fri := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, r.OnDay(fri, map[string]float64{"spy": 100, "tlt": 50, "gld": 80}))
	assert.Equal(t, 1, r.Stats().Rebalances)
}

func TestRunner_MissingSignalClose(t *testing.T) {
	r := newRunner(t, 0)
	err := r.OnDay(time.Now(), map[string]float64{"tlt": 50})
	assert.Error(t, err)
}
