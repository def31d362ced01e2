package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"regime-allocator-go/config"
	"regime-allocator-go/gateway"
	"regime-allocator-go/infrastructure/alert"
	"regime-allocator-go/infrastructure/logger"
	"regime-allocator-go/internal/engine"
	"regime-allocator-go/metrics"
	"regime-allocator-go/monitor"
	"regime-allocator-go/sim"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Feed.URL == "" {
		log.Fatal("feed.url is required for the live runner")
	}
	if len(cfg.Feed.Symbols) == 0 {
		log.Fatal("feed.symbols is required for the live runner")
	}

	appLog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer appLog.Close()

	recorder := monitor.NewPromRecorder("regime_allocator")
	if cfg.Metrics.Addr != "" {
		metrics.StartMetricsServer(cfg.Metrics.Addr, recorder.Registry())
	}

	alerts := alert.NewManager(
		[]alert.Channel{alert.DefaultChannel(cfg.Log.Format)},
		time.Minute,
	)

	eng, err := engine.NewFromApp(cfg, appLog, recorder, alerts)
	if err != nil {
		log.Fatalf("init engine: %v", err)
	}
	account := sim.NewAccount(cfg.Backtest.InitialCash)
	runner, err := sim.NewRunner(cfg.Backtest.SignalAsset, eng, account, 0)
	if err != nil {
		log.Fatalf("init runner: %v", err)
	}

	collector := newDayCollector(cfg.Feed.Symbols, func(t time.Time, closes map[string]float64) {
		if err := runner.OnDay(t, closes); err != nil {
			appLog.LogError(err, map[string]interface{}{"session": t.Format("2006-01-02")})
		}
	})

	feed := gateway.NewBarFeed(cfg.Feed.URL, cfg.Feed.APIKey, cfg.Feed.Symbols, collector.onBar)
	feed.OnError = func(err error) {
		appLog.LogError(err, map[string]interface{}{"component": "feed"})
	}
	if err := feed.Start(); err != nil {
		log.Fatalf("start feed: %v", err)
	}
	defer feed.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloader, err := config.NewReloader(*cfgPath, 5*time.Second,
		func(config.AppConfig) {
			appLog.Warn("config changed on disk; restart to apply policy changes")
		},
		func(err error) {
			appLog.LogError(err, map[string]interface{}{"component": "config_reload"})
		})
	if err != nil {
		log.Fatalf("init config reloader: %v", err)
	}
	if err := reloader.Start(ctx); err != nil {
		log.Fatalf("start config reloader: %v", err)
	}
	defer reloader.Close()

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	appLog.Info("runner started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	appLog.Info("runner stopping")
}

// staleSessionAge bounds how long a partial session may wait for its missing
// symbols once newer sessions are completing.
const staleSessionAge = 5 * 24 * time.Hour

// dayCollector groups per-symbol bars into complete sessions: once every
// tracked symbol has reported a close for a date, the session fires. Partial
// sessions left behind by a symbol that never reports are dropped once they
// fall staleSessionAge behind the latest completed session.
type dayCollector struct {
	assets    map[string]bool
	pending   map[string]map[string]float64
	times     map[string]time.Time
	onSession func(time.Time, map[string]float64)
	mu        sync.Mutex
}

func newDayCollector(symbols []string, onSession func(time.Time, map[string]float64)) *dayCollector {
	assets := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		assets[strings.ToLower(s)] = true
	}
	return &dayCollector{
		assets:    assets,
		pending:   make(map[string]map[string]float64),
		times:     make(map[string]time.Time),
		onSession: onSession,
	}
}

func (c *dayCollector) onBar(bar gateway.Bar) {
	asset := strings.ToLower(bar.Symbol)
	if !c.assets[asset] {
		return
	}

	c.mu.Lock()
	day := bar.Time.Format("2006-01-02")
	closes, ok := c.pending[day]
	if !ok {
		closes = make(map[string]float64, len(c.assets))
		c.pending[day] = closes
		c.times[day] = bar.Time
	}
	closes[asset] = bar.Close

	complete := len(closes) == len(c.assets)
	var t time.Time
	if complete {
		t = c.times[day]
		delete(c.pending, day)
		delete(c.times, day)
		for d, dt := range c.times {
			if t.Sub(dt) > staleSessionAge {
				delete(c.pending, d)
				delete(c.times, d)
			}
		}
	}
	c.mu.Unlock()

	if complete {
		c.onSession(t, closes)
	}
}
