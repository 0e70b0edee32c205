package rules

import (
	"fmt"
	"math"

	"rules-signal-engine/internal/store"
	"rules-signal-engine/internal/ta"
	"rules-signal-engine/internal/types"
)

// Trend follows sustained directional movement: fast/slow EMA
// separation sized in ATR units, confirmed by the MACD histogram
// pointing the same way.
type Trend struct {
	fast, slow, signal, atrPeriod int
	k, minScore                   float64
}

func NewTrend(cfg store.RuleConfig) *Trend {
	p := cfg.Params
	return &Trend{
		fast:      p.Int("fast", 10),
		slow:      p.Int("slow", 30),
		signal:    p.Int("signal", 9),
		atrPeriod: p.Int("atr_period", 14),
		k:         p.Float("k", 2.0),
		minScore:  p.Float("min_score", defaultMinScore),
	}
}

func (r *Trend) Name() string { return "trend" }

func (r *Trend) MinBars() int {
	// The MACD signal line needs signal values of the slow-aligned
	// line; ATR needs one extra bar for the previous close.
	n := r.slow + r.signal - 1
	if m := r.atrPeriod + 1; m > n {
		n = m
	}
	return n
}

func (r *Trend) Evaluate(mc types.MarketContext) types.RuleResult {
	if len(mc.Candles) < r.MinBars() {
		return insufficientData()
	}
	closes, highs, lows, _ := seriesOf(mc)

	sep := ta.Last(ta.EMA(closes, r.fast)) - ta.Last(ta.EMA(closes, r.slow))
	atr := ta.Last(ta.ATR(highs, lows, closes, r.atrPeriod))
	hist := ta.Last(ta.MACD(closes, r.fast, r.slow, r.signal).Histogram)

	if sep == 0 {
		return noSignal("no ema separation")
	}
	dir := types.DirBullish
	if sep < 0 {
		dir = types.DirBearish
	}
	if hist*sep < 0 {
		return noSignal("trend unconfirmed by macd histogram")
	}

	score := 1.0
	if atr > 0 {
		score = clamp01(math.Abs(sep) / (r.k * atr))
	}
	return admit(score, dir, r.minScore,
		fmt.Sprintf("ema separation %.4f over %.1fx atr %.4f", sep, r.k, atr))
}
