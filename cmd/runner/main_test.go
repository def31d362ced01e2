package main

import (
	"testing"
	"time"

	"regime-allocator-go/gateway"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 21, 0, 0, 0, time.UTC)
}

func TestDayCollector_FiresWhenAllSymbolsClose(t *testing.T) {
	var got map[string]float64
	c := newDayCollector([]string{"SPY", "TLT"}, func(_ time.Time, closes map[string]float64) {
		got = closes
	})

	c.onBar(gateway.Bar{Symbol: "SPY", Close: 500, Time: day(2026, 1, 9)})
	if got != nil {
		t.Fatal("session must not fire before all symbols report")
	}
	c.onBar(gateway.Bar{Symbol: "tlt", Close: 90, Time: day(2026, 1, 9)})
	if got == nil {
		t.Fatal("session must fire once all symbols report")
	}
	if got["spy"] != 500 || got["tlt"] != 90 {
		t.Errorf("unexpected closes: %v", got)
	}
	if len(c.pending) != 0 {
		t.Errorf("completed day must be cleared, %d pending", len(c.pending))
	}
}

func TestDayCollector_IgnoresUntrackedSymbols(t *testing.T) {
	fired := false
	c := newDayCollector([]string{"SPY"}, func(time.Time, map[string]float64) { fired = true })

	c.onBar(gateway.Bar{Symbol: "GLD", Close: 200, Time: day(2026, 1, 9)})
	if fired || len(c.pending) != 0 {
		t.Error("bars for untracked symbols must be dropped")
	}
}

func TestDayCollector_EvictsStalePartialSessions(t *testing.T) {
	c := newDayCollector([]string{"SPY", "TLT"}, func(time.Time, map[string]float64) {})

	// TLT never reports for Jan 9; the day stays pending.
	c.onBar(gateway.Bar{Symbol: "SPY", Close: 500, Time: day(2026, 1, 9)})
	if len(c.pending) != 1 {
		t.Fatalf("expected 1 pending day, got %d", len(c.pending))
	}

	// A complete session well past the horizon sweeps the stale day out.
	c.onBar(gateway.Bar{Symbol: "SPY", Close: 510, Time: day(2026, 1, 23)})
	c.onBar(gateway.Bar{Symbol: "TLT", Close: 91, Time: day(2026, 1, 23)})
	if len(c.pending) != 0 || len(c.times) != 0 {
		t.Errorf("stale partial session must be evicted, %d pending", len(c.pending))
	}
}
