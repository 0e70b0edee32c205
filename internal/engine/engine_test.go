package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rules-signal-engine/internal/interfaces"
	"rules-signal-engine/internal/regime"
	"rules-signal-engine/internal/store"
	"rules-signal-engine/internal/types"
)

type stubRule struct {
	name   string
	result types.RuleResult
	panics bool
}

func (s stubRule) Name() string { return s.name }
func (s stubRule) MinBars() int { return 1 }
func (s stubRule) Evaluate(types.MarketContext) types.RuleResult {
	if s.panics {
		panic("boom")
	}
	return s.result
}

func passing(name string, score float64, dir int) stubRule {
	return stubRule{name: name, result: types.RuleResult{Pass: true, Score: score, Direction: dir, Reason: "ok"}}
}

func testConfig() *store.Config {
	cfg := &store.Config{}
	cfg.Thresholds.Buy = 0.6
	cfg.Thresholds.Sell = 0.6
	return cfg
}

func stubEngine(cfg *store.Config, rules ...registered) *engine {
	return &engine{cfg: cfg, classifier: regime.New(), registry: rules}
}

func synthUptrend(n int) types.MarketContext {
	cs := make([]types.Candle, n)
	for i := range cs {
		c := 100 + float64(i)
		cs[i] = types.Candle{Ts: int64(i + 1), Open: c, High: c + 0.5, Low: c - 0.5, Close: c, Vol: 1000}
	}
	return types.MarketContext{Symbol: "TEST", Timeframe: "1d", Candles: cs}
}

func TestEvaluateAllPreservesRegistrationOrder(t *testing.T) {
	e := stubEngine(testConfig(),
		registered{rule: passing("a", 0.9, types.DirBullish), weight: 1},
		registered{rule: passing("b", 0.8, types.DirBullish), weight: 1},
		registered{rule: passing("c", 0.7, types.DirBullish), weight: 1},
	)
	for i := 0; i < 20; i++ {
		out := e.EvaluateAll(context.Background(), synthUptrend(5))
		require.Len(t, out, 3)
		assert.Equal(t, "a", out[0].Name)
		assert.Equal(t, "b", out[1].Name)
		assert.Equal(t, "c", out[2].Name)
	}
}

func TestEvaluateAllIsolatesPanickingRule(t *testing.T) {
	e := stubEngine(testConfig(),
		registered{rule: passing("healthy1", 0.9, types.DirBullish), weight: 1},
		registered{rule: stubRule{name: "broken", panics: true}, weight: 1},
		registered{rule: passing("healthy2", 0.7, types.DirBullish), weight: 1},
	)
	out := e.EvaluateAll(context.Background(), synthUptrend(5))
	require.Len(t, out, 3)

	assert.True(t, out[0].Result.Pass)
	assert.Equal(t, 0.9, out[0].Result.Score)

	assert.False(t, out[1].Result.Pass)
	assert.Equal(t, 0.0, out[1].Result.Score)
	assert.Contains(t, out[1].Result.Reason, "error boom")

	assert.True(t, out[2].Result.Pass)
	assert.Equal(t, 0.7, out[2].Result.Score)
}

func TestAggregateWeightedAverage(t *testing.T) {
	cfg := testConfig()
	wA, wB := 1.0, 2.0
	cfg.Rules = map[string]store.RuleConfig{
		"a": {Weight: &wA},
		"b": {Weight: &wB},
	}
	e := stubEngine(cfg,
		registered{rule: passing("a", 0.4, types.DirBullish), weight: 1},
		registered{rule: passing("b", 0.8, types.DirBullish), weight: 2},
	)
	mc := synthUptrend(5)
	out := e.EvaluateAll(context.Background(), mc)
	sig := e.Aggregate(mc, types.RegimeTrending, out)

	// (1*0.4 + 2*0.8) / (1+2)
	assert.InDelta(t, 0.6667, sig.Score, 1e-4)
	assert.Equal(t, types.SideBuy, sig.Side)
	require.Len(t, sig.Rules, 2)
	assert.Equal(t, 1.0, sig.Rules[0].Weight)
	assert.Equal(t, 2.0, sig.Rules[1].Weight)
}

func TestAggregateAppliesRegimeWeights(t *testing.T) {
	cfg := testConfig()
	cfg.RegimeWeights = map[string]map[types.Regime]float64{
		"a": {types.RegimeTrending: 3.0},
	}
	e := stubEngine(cfg,
		registered{rule: passing("a", 0.9, types.DirBullish), weight: 1},
		registered{rule: passing("b", 0.3, types.DirBullish), weight: 1},
	)
	mc := synthUptrend(5)
	sig := e.Aggregate(mc, types.RegimeTrending, e.EvaluateAll(context.Background(), mc))
	// (3*0.9 + 1*0.3) / 4
	assert.InDelta(t, 0.75, sig.Score, 1e-9)

	// A regime without a table entry falls back to neutral weights.
	sig = e.Aggregate(mc, types.RegimeRange, e.EvaluateAll(context.Background(), mc))
	assert.InDelta(t, 0.6, sig.Score, 1e-9)
}

func TestAggregateNonPassingExcludedFromDenominator(t *testing.T) {
	e := stubEngine(testConfig(),
		registered{rule: passing("a", 0.8, types.DirBullish), weight: 1},
		registered{rule: stubRule{name: "b", result: types.RuleResult{Reason: "insufficient data"}}, weight: 5},
	)
	mc := synthUptrend(5)
	sig := e.Aggregate(mc, types.RegimeRange, e.EvaluateAll(context.Background(), mc))
	assert.InDelta(t, 0.8, sig.Score, 1e-9)
	assert.Equal(t, types.SideBuy, sig.Side)
}

func TestAggregateNoPassingRules(t *testing.T) {
	e := stubEngine(testConfig(),
		registered{rule: stubRule{name: "a", result: types.RuleResult{Reason: "no signal"}}, weight: 1},
	)
	mc := synthUptrend(5)
	sig := e.Aggregate(mc, types.RegimeRange, e.EvaluateAll(context.Background(), mc))
	assert.Equal(t, 0.0, sig.Score)
	assert.Equal(t, types.SideNone, sig.Side)
}

func TestAggregateSellSide(t *testing.T) {
	e := stubEngine(testConfig(),
		registered{rule: passing("a", 0.9, types.DirBearish), weight: 1},
	)
	mc := synthUptrend(5)
	sig := e.Aggregate(mc, types.RegimeRange, e.EvaluateAll(context.Background(), mc))
	assert.Equal(t, types.SideSell, sig.Side)
}

func TestAggregateBelowThresholdIsNone(t *testing.T) {
	e := stubEngine(testConfig(),
		registered{rule: passing("a", 0.4, types.DirBullish), weight: 1},
	)
	mc := synthUptrend(5)
	sig := e.Aggregate(mc, types.RegimeRange, e.EvaluateAll(context.Background(), mc))
	assert.InDelta(t, 0.4, sig.Score, 1e-9)
	assert.Equal(t, types.SideNone, sig.Side)
}

func TestNewRejectsUnknownRuleName(t *testing.T) {
	cfg := testConfig()
	cfg.Rules = map[string]store.RuleConfig{"nope": {}}
	_, err := New(cfg, regime.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown rule 'nope'")
}

func TestDisabledRuleSkippedEntirely(t *testing.T) {
	off := false
	cfg := testConfig()
	cfg.Rules = map[string]store.RuleConfig{
		"momentum":   {Enabled: &off},
		"meanrevert": {Enabled: &off},
		"breakout":   {Enabled: &off},
	}
	eng, err := New(cfg, regime.New())
	require.NoError(t, err)

	out := eng.EvaluateAll(context.Background(), synthUptrend(60))
	require.Len(t, out, 1)
	assert.Equal(t, "trend", out[0].Name)
}

func TestEvaluateUptrendEndToEnd(t *testing.T) {
	eng, err := New(testConfig(), regime.New())
	require.NoError(t, err)

	sig := eng.Evaluate(context.Background(), synthUptrend(60))
	assert.Equal(t, types.RegimeTrending, sig.Regime)
	assert.Equal(t, types.SideBuy, sig.Side)
	assert.Greater(t, sig.Score, 0.5)
	require.Len(t, sig.Rules, 4)

	var trend types.RuleOutcome
	for _, oc := range sig.Rules {
		if oc.Name == "trend" {
			trend = oc
		}
	}
	assert.True(t, trend.Result.Pass)
	assert.Greater(t, trend.Result.Score, 0.5)
}

func TestWarmupBarsCoversEnabledRules(t *testing.T) {
	eng, err := New(testConfig(), regime.New())
	require.NoError(t, err)
	mc := synthUptrend(eng.WarmupBars())
	for _, oc := range eng.EvaluateAll(context.Background(), mc) {
		assert.NotEqual(t, "insufficient data", oc.Result.Reason, "rule %s", oc.Name)
	}
}

var _ interfaces.Rule = stubRule{}
