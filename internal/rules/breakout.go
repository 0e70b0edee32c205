package rules

import (
	"fmt"

	"rules-signal-engine/internal/store"
	"rules-signal-engine/internal/ta"
	"rules-signal-engine/internal/types"
)

// Breakout fires when the close escapes the prior lookback range on
// expanded volume. Conviction blends ATR-normalized breach distance
// with the degree of volume expansion.
type Breakout struct {
	lookback, atrPeriod int
	volMult, minScore   float64
}

func NewBreakout(cfg store.RuleConfig) *Breakout {
	p := cfg.Params
	return &Breakout{
		lookback:  p.Int("lookback", 20),
		atrPeriod: p.Int("atr_period", 14),
		volMult:   p.Float("vol_mult", 1.5),
		minScore:  p.Float("min_score", defaultMinScore),
	}
}

func (r *Breakout) Name() string { return "breakout" }

func (r *Breakout) MinBars() int {
	// lookback prior bars plus the current one; ATR needs a previous
	// close as well.
	n := r.lookback + 1
	if m := r.atrPeriod + 1; m > n {
		n = m
	}
	return n
}

func (r *Breakout) Evaluate(mc types.MarketContext) types.RuleResult {
	if len(mc.Candles) < r.MinBars() {
		return insufficientData()
	}
	closes, highs, lows, vols := seriesOf(mc)
	cur := len(closes) - 1

	hi, lo := highs[cur-r.lookback], lows[cur-r.lookback]
	avgVol := 0.0
	for i := cur - r.lookback; i < cur; i++ {
		if highs[i] > hi {
			hi = highs[i]
		}
		if lows[i] < lo {
			lo = lows[i]
		}
		avgVol += vols[i]
	}
	avgVol /= float64(r.lookback)

	price := closes[cur]
	var dir int
	var breach float64
	switch {
	case price > hi:
		dir = types.DirBullish
		breach = price - hi
	case price < lo:
		dir = types.DirBearish
		breach = lo - price
	default:
		return noSignal("close inside prior range")
	}

	if avgVol > 0 && vols[cur] < r.volMult*avgVol {
		return noSignal(fmt.Sprintf("volume %.0f below %.1fx average %.0f", vols[cur], r.volMult, avgVol))
	}

	atr := ta.Last(ta.ATR(highs, lows, closes, r.atrPeriod))
	breachScore := 1.0
	if atr > 0 {
		breachScore = clamp01(breach / atr)
	}
	volScore := 0.0
	if avgVol > 0 {
		volScore = clamp01((vols[cur]/avgVol - 1) / 2)
	}
	score := 0.6*breachScore + 0.4*volScore
	return admit(score, dir, r.minScore,
		fmt.Sprintf("range breach %.4f on %.1fx volume", breach, vols[cur]/max1(avgVol)))
}

func max1(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}
