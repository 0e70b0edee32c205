package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rules-signal-engine/internal/types"
)

// Config is the immutable per-batch snapshot of rule configuration and
// regime weights. Reconfiguration means loading a fresh Config and
// rebuilding the engine, never mutating an existing one.
type Config struct {
	Thresholds struct {
		Buy  float64 `yaml:"buy"`
		Sell float64 `yaml:"sell"`
	} `yaml:"thresholds"`
	Rules         map[string]RuleConfig               `yaml:"rules"`
	RegimeWeights map[string]map[types.Regime]float64 `yaml:"regime_weights"`
	Watch         struct {
		PollSeconds   int    `yaml:"poll_seconds"`
		CandleFile    string `yaml:"candle_file"`
		Symbol        string `yaml:"symbol"`
		Timeframe     string `yaml:"timeframe"`
		MetricsListen string `yaml:"metrics_listen"`
	} `yaml:"watch"`
	LogRetentionDays int `yaml:"log_retention_days"`
}

// RuleConfig carries one rule's settings. Nil Enabled/Weight mean
// "unset" and default to enabled with weight 1.0.
type RuleConfig struct {
	Enabled *bool    `yaml:"enabled"`
	Weight  *float64 `yaml:"weight"`
	Params  Params   `yaml:"params"`
}

func (rc RuleConfig) IsEnabled() bool {
	return rc.Enabled == nil || *rc.Enabled
}

func (rc RuleConfig) WeightOrDefault() float64 {
	if rc.Weight == nil {
		return 1.0
	}
	return *rc.Weight
}

// Params is the opaque per-rule parameter mapping. Accessors fall back
// to the rule's built-in default on a missing or mistyped entry.
type Params map[string]any

func (p Params) Float(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return def
}

func (p Params) Int(key string, def int) int {
	if v, ok := p[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	return def
}

// RegimeWeight resolves the (rule, regime) weight; missing table
// entries default to the neutral 1.0.
func (c *Config) RegimeWeight(rule string, regime types.Regime) float64 {
	row, ok := c.RegimeWeights[rule]
	if !ok {
		return 1.0
	}
	w, ok := row[regime]
	if !ok {
		return 1.0
	}
	return w
}

func (c *Config) Validate() error {
	if c.Thresholds.Buy < 0 || c.Thresholds.Buy > 1 {
		return fmt.Errorf("thresholds.buy must be in [0,1], got %.3f", c.Thresholds.Buy)
	}
	if c.Thresholds.Sell < 0 || c.Thresholds.Sell > 1 {
		return fmt.Errorf("thresholds.sell must be in [0,1], got %.3f", c.Thresholds.Sell)
	}
	for name, rc := range c.Rules {
		if rc.Weight != nil && *rc.Weight < 0 {
			return fmt.Errorf("rules.%s.weight must be >= 0, got %.3f", name, *rc.Weight)
		}
	}
	valid := map[types.Regime]bool{
		types.RegimeTrending:   true,
		types.RegimeRange:      true,
		types.RegimeMeanRevert: true,
	}
	for name, row := range c.RegimeWeights {
		for regime, w := range row {
			if !valid[regime] {
				return fmt.Errorf("regime_weights.%s: unknown regime '%s'", name, regime)
			}
			if w < 0 {
				return fmt.Errorf("regime_weights.%s.%s must be >= 0, got %.3f", name, regime, w)
			}
		}
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Thresholds.Buy == 0 {
		c.Thresholds.Buy = 0.6
	}
	if c.Thresholds.Sell == 0 {
		c.Thresholds.Sell = 0.6
	}
	if c.Watch.PollSeconds == 0 {
		c.Watch.PollSeconds = 15
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
