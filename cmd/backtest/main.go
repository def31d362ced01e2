package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"regime-allocator-go/config"
	"regime-allocator-go/infrastructure/logger"
	"regime-allocator-go/internal/engine"
	"regime-allocator-go/sim"
)

type seriesEntry struct {
	asset string
	path  string
}

type bar struct {
	date  time.Time
	close float64
}

// Config-driven multi-asset backtest.
// Usage:
//
//	go run ./cmd/backtest -config configs/config.yaml -data spy:data/spy.csv,tlt:data/tlt.csv,gld:data/gld.csv -out summary.csv
func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "config file path")
	dataArg := flag.String("data", "", "asset:csv list, comma separated")
	outPath := flag.String("out", "", "write a CSV summary when set")
	warmup := flag.Int("warmup", 0, "seed the first N sessions instead of trading them")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	entries := parseSeriesArg(*dataArg)
	if len(entries) == 0 {
		log.Fatal("no asset:csv pairs given")
	}

	appLog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer appLog.Close()

	eng, err := engine.NewFromApp(cfg, appLog, nil, nil)
	if err != nil {
		log.Fatalf("init engine: %v", err)
	}
	account := sim.NewAccount(cfg.Backtest.InitialCash)
	runner, err := sim.NewRunner(cfg.Backtest.SignalAsset, eng, account, cfg.Backtest.MonthlyContribution)
	if err != nil {
		log.Fatalf("init runner: %v", err)
	}

	series := make(map[string][]bar, len(entries))
	for _, entry := range entries {
		bars, err := loadSeries(entry.path)
		if err != nil {
			log.Fatalf("asset %s: read %s: %v", entry.asset, entry.path, err)
		}
		series[entry.asset] = bars
	}

	signal, ok := series[cfg.Backtest.SignalAsset]
	if !ok {
		log.Fatalf("signal asset %s has no data series", cfg.Backtest.SignalAsset)
	}
	for asset, bars := range series {
		if len(bars) != len(signal) {
			log.Fatalf("asset %s has %d rows, signal asset has %d", asset, len(bars), len(signal))
		}
	}

	start := 0
	if *warmup > 0 {
		if *warmup >= len(signal) {
			log.Fatalf("warmup %d leaves no tradable sessions (%d rows)", *warmup, len(signal))
		}
		seed := make([]float64, *warmup)
		for i := range seed {
			seed[i] = signal[i].close
		}
		runner.Seed(seed)
		start = *warmup
	}

	for i := start; i < len(signal); i++ {
		closes := make(map[string]float64, len(series))
		for asset, bars := range series {
			if !bars[i].date.Equal(signal[i].date) {
				log.Fatalf("asset %s date %s does not match signal date %s",
					asset, bars[i].date.Format("2006-01-02"), signal[i].date.Format("2006-01-02"))
			}
			closes[asset] = bars[i].close
		}
		if err := runner.OnDay(signal[i].date, closes); err != nil {
			log.Fatalf("session %s: %v", signal[i].date.Format("2006-01-02"), err)
		}
	}

	stats := runner.Stats()
	fmt.Printf("sessions=%d rebalances=%d contributed=%.2f\n",
		stats.Days, stats.Rebalances, stats.Contributed)
	fmt.Printf("final_equity=%.2f peak_equity=%.2f max_drawdown=%.2f%%\n",
		stats.FinalEquity, stats.PeakEquity, stats.MaxDrawdown*100)
	fmt.Printf("final_regime=%s bear=%v\n", eng.Regime(), eng.Bear())
	if snap, ok := eng.LastSnapshot(); ok {
		fmt.Printf("realized_vol=%.2f%% vol_ratio=%.2f return_20d=%.2f%%\n",
			snap.RealizedVol20, snap.VolRatio, snap.Return20*100)
	}

	if *outPath != "" {
		if err := writeSummary(*outPath, stats, eng.Regime().String()); err != nil {
			log.Fatalf("write summary: %v", err)
		}
	}
}

func parseSeriesArg(arg string) []seriesEntry {
	var entries []seriesEntry
	for _, part := range strings.Split(arg, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pieces := strings.SplitN(part, ":", 2)
		if len(pieces) != 2 {
			continue
		}
		entries = append(entries, seriesEntry{
			asset: strings.ToLower(strings.TrimSpace(pieces[0])),
			path:  strings.TrimSpace(pieces[1]),
		})
	}
	return entries
}

// loadSeries reads date,close rows. A header row is skipped automatically.
func loadSeries(path string) ([]bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var bars []bar
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
		if err != nil {
			if i == 0 {
				continue // header
			}
			return nil, fmt.Errorf("row %d: bad date %q", i+1, row[0])
		}
		close, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad close %q", i+1, row[1])
		}
		bars = append(bars, bar{date: date, close: close})
	}
	return bars, nil
}

func writeSummary(path string, stats sim.Stats, finalRegime string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{
		"sessions", "rebalances", "contributed", "final_equity", "peak_equity", "max_drawdown", "final_regime",
	}); err != nil {
		return err
	}
	return w.Write([]string{
		strconv.Itoa(stats.Days),
		strconv.Itoa(stats.Rebalances),
		fmt.Sprintf("%.2f", stats.Contributed),
		fmt.Sprintf("%.2f", stats.FinalEquity),
		fmt.Sprintf("%.2f", stats.PeakEquity),
		fmt.Sprintf("%.4f", stats.MaxDrawdown),
		finalRegime,
	})
}
