package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"regime-allocator-go/infrastructure/logger"
)

// AppConfig holds the full runtime configuration.
type AppConfig struct {
	Env        string           `yaml:"env"`
	Log        logger.Config    `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Feed       FeedConfig       `yaml:"feed"`
	Policy     PolicyConfig     `yaml:"policy"`
	Regime     RegimeConfig     `yaml:"regime"`
	Governor   GovernorConfig   `yaml:"governor"`
	Allocation AllocationConfig `yaml:"allocation"`
	Backtest   BacktestConfig   `yaml:"backtest"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the metrics server
}

// FeedConfig points the live runner at a daily-bar stream.
type FeedConfig struct {
	URL     string   `yaml:"url"`
	APIKey  string   `yaml:"apiKey"`
	Symbols []string `yaml:"symbols"`
}

// PolicyConfig selects between the policy variants.
type PolicyConfig struct {
	UseGovernor     bool `yaml:"useGovernor"`     // drawdown governor vs hard regime ceilings
	BearOverlay     bool `yaml:"bearOverlay"`     // derived bear flag
	EscalationClamp bool `yaml:"escalationClamp"` // limit escalation to one tier per cycle
	AllowShort      bool `yaml:"allowShort"`      // permit negative target fractions
}

// RegimeConfig holds the classification thresholds.
type RegimeConfig struct {
	PanicVolRatio   float64 `yaml:"panicVolRatio"`
	PanicReturn20   float64 `yaml:"panicReturn20"`
	StressVolRatio  float64 `yaml:"stressVolRatio"`
	StressDaysBelow int     `yaml:"stressDaysBelow"`
	StressRSI       float64 `yaml:"stressRSI"`
	AlertVolRatio   float64 `yaml:"alertVolRatio"`
	AlertDaysBelow  int     `yaml:"alertDaysBelow"`
	AlertRSI        float64 `yaml:"alertRSI"`
	CalmVolRatio    float64 `yaml:"calmVolRatio"`
	CalmRSI         float64 `yaml:"calmRSI"`
	BearDrawdown    float64 `yaml:"bearDrawdown"`
}

// GovernorConfig holds the drawdown response parameters.
type GovernorConfig struct {
	Buffer float64 `yaml:"buffer"`
	Target float64 `yaml:"target"`
	Floor  float64 `yaml:"floor"`
}

// AllocationConfig holds the budget table, structural weights and
// allocator parameters. Budgets and weights are keyed by regime name.
type AllocationConfig struct {
	Budgets         map[string]float64            `yaml:"budgets"`
	Weights         map[string]map[string]float64 `yaml:"weights"`
	BearWeights     map[string]float64            `yaml:"bearWeights"`
	Assets          []string                      `yaml:"assets"`
	Leverage        map[string]float64            `yaml:"leverage"`
	CalmFloorPct    float64                       `yaml:"calmFloorPct"`
	BrakeThreshold  float64                       `yaml:"brakeThreshold"`
	BrakeMultiplier float64                       `yaml:"brakeMultiplier"`
	EquityAsset     string                        `yaml:"equityAsset"`
	GateEpsilon     float64                       `yaml:"gateEpsilon"`
}

// BacktestConfig parameterizes the backtest host.
type BacktestConfig struct {
	InitialCash         float64 `yaml:"initialCash"`
	MonthlyContribution float64 `yaml:"monthlyContribution"`
	SignalAsset         string  `yaml:"signalAsset"`
}

// Default returns the canonical configuration; Load unmarshals on top of it
// so absent YAML sections keep their defaults.
func Default() AppConfig {
	return AppConfig{
		Env: "dev",
		Log: logger.DefaultConfig(),
		Metrics: MetricsConfig{
			Addr: ":9100",
		},
		Policy: PolicyConfig{
			UseGovernor: true,
		},
		Regime: RegimeConfig{
			PanicVolRatio:   1.60,
			PanicReturn20:   -0.08,
			StressVolRatio:  1.40,
			StressDaysBelow: 4,
			StressRSI:       40,
			AlertVolRatio:   1.25,
			AlertDaysBelow:  2,
			AlertRSI:        45,
			CalmVolRatio:    1.15,
			CalmRSI:         50,
			BearDrawdown:    -0.12,
		},
		Governor: GovernorConfig{
			Buffer: 0.12,
			Target: 0.25,
			Floor:  0.20,
		},
		Allocation: AllocationConfig{
			Budgets: map[string]float64{
				"Calm": 0.12, "Alert": 0.09, "Stress": 0.06, "Panic": 0.04,
			},
			Weights: map[string]map[string]float64{
				"Calm":   {"spy": 0.55, "tlt": 0.35, "gld": 0.10},
				"Alert":  {"spy": 0.45, "tlt": 0.35, "gld": 0.10},
				"Stress": {"spy": 0.30, "tlt": 0.35, "gld": 0.10},
				"Panic":  {"spy": 0.20, "tlt": 0.30, "gld": 0.10},
			},
			Assets:          []string{"spy", "tlt", "gld"},
			Leverage:        map[string]float64{"spy": 20, "tlt": 20, "gld": 20},
			CalmFloorPct:    0.07,
			BrakeThreshold:  1.05,
			BrakeMultiplier: 0.85,
			EquityAsset:     "spy",
			GateEpsilon:     0.01,
		},
		Backtest: BacktestConfig{
			InitialCash: 5000,
			SignalAsset: "spy",
		},
	}
}

// Load reads YAML config from path over the defaults and validates it.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config and overrides sensitive fields from the
// environment when present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("RA_FEED_API_KEY"); v != "" {
		cfg.Feed.APIKey = v
	}
	if v := os.Getenv("RA_FEED_URL"); v != "" {
		cfg.Feed.URL = v
	}
	return cfg, Validate(cfg)
}
