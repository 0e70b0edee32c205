package rules

import (
	"strings"
	"testing"

	"rules-signal-engine/internal/store"
	"rules-signal-engine/internal/types"
)

func synth(n int, close func(i int) float64, vol func(i int) float64) types.MarketContext {
	cs := make([]types.Candle, n)
	for i := range cs {
		c := close(i)
		cs[i] = types.Candle{Ts: int64(i + 1), Open: c, High: c + 0.5, Low: c - 0.5, Close: c, Vol: vol(i)}
	}
	return types.MarketContext{Symbol: "TEST", Timeframe: "1d", Candles: cs}
}

func flatVol(i int) float64 { return 1000 }

func TestTrendRuleUptrend(t *testing.T) {
	r := NewTrend(store.RuleConfig{})
	mc := synth(60, func(i int) float64 { return 100 + float64(i) }, flatVol)
	res := r.Evaluate(mc)
	if !res.Pass {
		t.Fatalf("expected pass on 60-bar uptrend, got reason %q", res.Reason)
	}
	if res.Score <= 0.5 {
		t.Errorf("score = %f, want > 0.5", res.Score)
	}
	if res.Direction != types.DirBullish {
		t.Errorf("direction = %d, want bullish", res.Direction)
	}
}

func TestTrendRuleFlat(t *testing.T) {
	r := NewTrend(store.RuleConfig{})
	mc := synth(60, func(i int) float64 { return 100 }, flatVol)
	res := r.Evaluate(mc)
	if res.Pass {
		t.Fatal("expected no pass on flat series")
	}
	if res.Score != 0 {
		t.Errorf("score = %f, want 0", res.Score)
	}
}

func TestTrendRuleDowntrendBearish(t *testing.T) {
	r := NewTrend(store.RuleConfig{})
	mc := synth(60, func(i int) float64 { return 200 - float64(i) }, flatVol)
	res := r.Evaluate(mc)
	if !res.Pass || res.Direction != types.DirBearish {
		t.Errorf("expected bearish pass, got pass=%v dir=%d reason=%q", res.Pass, res.Direction, res.Reason)
	}
}

func TestTrendRuleInsufficientData(t *testing.T) {
	r := NewTrend(store.RuleConfig{})
	mc := synth(5, func(i int) float64 { return 100 + float64(i) }, flatVol)
	res := r.Evaluate(mc)
	if res.Pass || res.Score != 0 {
		t.Fatalf("expected non-passing zero result, got %+v", res)
	}
	if !strings.Contains(res.Reason, "insufficient data") {
		t.Errorf("reason = %q, want insufficient data", res.Reason)
	}
}

func TestMomentumRule(t *testing.T) {
	r := NewMomentum(store.RuleConfig{})

	up := synth(30, func(i int) float64 { return 100 + float64(i) }, flatVol)
	res := r.Evaluate(up)
	if !res.Pass || res.Direction != types.DirBullish {
		t.Errorf("uptrend: expected bullish pass, got %+v", res)
	}

	down := synth(30, func(i int) float64 { return 200 - float64(i) }, flatVol)
	res = r.Evaluate(down)
	if !res.Pass || res.Direction != types.DirBearish {
		t.Errorf("downtrend: expected bearish pass, got %+v", res)
	}

	flat := synth(30, func(i int) float64 { return 100 }, flatVol)
	res = r.Evaluate(flat)
	if res.Pass {
		t.Errorf("flat: expected no pass, got %+v", res)
	}
}

func TestMeanRevertRule(t *testing.T) {
	r := NewMeanRevert(store.RuleConfig{})

	// Oscillation with a hard drop on the final bar breaches the
	// lower band.
	drop := synth(40, func(i int) float64 {
		if i == 39 {
			return 88
		}
		return 100 + float64(i%2)*2
	}, flatVol)
	res := r.Evaluate(drop)
	if !res.Pass || res.Direction != types.DirBullish {
		t.Errorf("drop: expected bullish reversion, got %+v", res)
	}

	inside := synth(40, func(i int) float64 { return 100 + float64(i%2) }, flatVol)
	res = r.Evaluate(inside)
	if res.Pass {
		t.Errorf("inside bands: expected no pass, got %+v", res)
	}
}

func TestBreakoutRule(t *testing.T) {
	r := NewBreakout(store.RuleConfig{})

	burst := synth(40, func(i int) float64 {
		if i == 39 {
			return 106
		}
		return 100
	}, func(i int) float64 {
		if i == 39 {
			return 3000
		}
		return 1000
	})
	res := r.Evaluate(burst)
	if !res.Pass || res.Direction != types.DirBullish {
		t.Errorf("burst: expected bullish breakout, got %+v", res)
	}

	// Same breach without volume expansion is rejected.
	quiet := synth(40, func(i int) float64 {
		if i == 39 {
			return 106
		}
		return 100
	}, flatVol)
	res = r.Evaluate(quiet)
	if res.Pass {
		t.Errorf("quiet breach: expected no pass, got %+v", res)
	}

	flat := synth(40, func(i int) float64 { return 100 }, flatVol)
	res = r.Evaluate(flat)
	if res.Pass {
		t.Errorf("flat: expected no pass, got %+v", res)
	}
}

func TestRuleParamsOverrideDefaults(t *testing.T) {
	cfg := store.RuleConfig{Params: store.Params{"period": 7, "upper": 60.0}}
	r := NewMomentum(cfg)
	if r.period != 7 {
		t.Errorf("period = %d, want 7", r.period)
	}
	if r.upper != 60.0 {
		t.Errorf("upper = %f, want 60", r.upper)
	}
	if r.lower != 45.0 {
		t.Errorf("lower = %f, want default 45", r.lower)
	}
}
