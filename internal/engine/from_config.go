package engine

import (
	"regime-allocator-go/config"
	"regime-allocator-go/infrastructure/alert"
	"regime-allocator-go/infrastructure/logger"
	"regime-allocator-go/monitor"
	"regime-allocator-go/portfolio"
	"regime-allocator-go/regime"
	"regime-allocator-go/risk"
)

// NewFromApp wires an engine from application config plus the ambient
// collaborators the host already owns.
func NewFromApp(cfg config.AppConfig, log *logger.Logger, rec monitor.Recorder, alerts *alert.Manager) (*Engine, error) {
	allocCfg, err := cfg.AllocatorConfig()
	if err != nil {
		return nil, err
	}
	allocator, err := portfolio.NewAllocator(allocCfg)
	if err != nil {
		return nil, err
	}

	var governor *risk.Governor
	if cfg.Policy.UseGovernor {
		g := cfg.Governor
		governor = risk.NewGovernor(g.Buffer, g.Target, g.Floor)
	}

	return New(Config{UseGovernor: cfg.Policy.UseGovernor}, Components{
		Classifier: regime.NewClassifier(cfg.ClassifierConfig()),
		Governor:   governor,
		Allocator:  allocator,
		Logger:     log,
		Recorder:   rec,
		Alerts:     alerts,
	})
}
