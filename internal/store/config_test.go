package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rules-signal-engine/internal/types"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfigDefaults(t *testing.T) {
	p := writeConfig(t, `
rules:
  trend:
    params:
      fast: 8
`)
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Thresholds.Buy != 0.6 || cfg.Thresholds.Sell != 0.6 {
		t.Errorf("thresholds = %+v, want 0.6/0.6 defaults", cfg.Thresholds)
	}
	if cfg.Watch.PollSeconds != 15 {
		t.Errorf("poll_seconds = %d, want 15", cfg.Watch.PollSeconds)
	}

	rc := cfg.Rules["trend"]
	if !rc.IsEnabled() {
		t.Error("unset enabled should default to true")
	}
	if rc.WeightOrDefault() != 1.0 {
		t.Errorf("unset weight = %f, want 1.0", rc.WeightOrDefault())
	}
	if got := rc.Params.Int("fast", 10); got != 8 {
		t.Errorf("params.fast = %d, want 8", got)
	}
	if got := rc.Params.Int("slow", 30); got != 30 {
		t.Errorf("missing param should fall back, got %d", got)
	}
}

func TestLoadConfigExplicitValues(t *testing.T) {
	p := writeConfig(t, `
thresholds:
  buy: 0.7
  sell: 0.55
rules:
  momentum:
    enabled: false
    weight: 2.5
regime_weights:
  trend:
    TRENDING: 1.5
    RANGE: 0.5
`)
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Thresholds.Buy != 0.7 || cfg.Thresholds.Sell != 0.55 {
		t.Errorf("thresholds = %+v", cfg.Thresholds)
	}
	rc := cfg.Rules["momentum"]
	if rc.IsEnabled() {
		t.Error("enabled=false not honored")
	}
	if rc.WeightOrDefault() != 2.5 {
		t.Errorf("weight = %f, want 2.5", rc.WeightOrDefault())
	}

	if w := cfg.RegimeWeight("trend", types.RegimeTrending); w != 1.5 {
		t.Errorf("regime weight = %f, want 1.5", w)
	}
	if w := cfg.RegimeWeight("trend", types.RegimeMeanRevert); w != 1.0 {
		t.Errorf("missing regime entry = %f, want neutral 1.0", w)
	}
	if w := cfg.RegimeWeight("breakout", types.RegimeRange); w != 1.0 {
		t.Errorf("missing rule row = %f, want neutral 1.0", w)
	}
}

func TestLoadConfigRejectsBadThreshold(t *testing.T) {
	p := writeConfig(t, "thresholds:\n  buy: 1.5\n")
	if _, err := LoadConfig(p); err == nil {
		t.Fatal("expected validation error for buy threshold > 1")
	}
}

func TestLoadConfigRejectsNegativeWeight(t *testing.T) {
	p := writeConfig(t, "rules:\n  trend:\n    weight: -1\n")
	_, err := LoadConfig(p)
	if err == nil {
		t.Fatal("expected validation error for negative weight")
	}
	if !strings.Contains(err.Error(), "weight must be >= 0") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfigRejectsUnknownRegime(t *testing.T) {
	p := writeConfig(t, "regime_weights:\n  trend:\n    SIDEWAYS: 1.0\n")
	_, err := LoadConfig(p)
	if err == nil {
		t.Fatal("expected validation error for unknown regime")
	}
	if !strings.Contains(err.Error(), "unknown regime") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
