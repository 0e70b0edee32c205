package rules

import (
	"fmt"

	"rules-signal-engine/internal/store"
	"rules-signal-engine/internal/ta"
	"rules-signal-engine/internal/types"
)

// Momentum reads RSI displacement from the neutral 50 line: above the
// upper bound momentum is bullish, below the lower bound bearish, with
// conviction scaling linearly toward the 70/30 extremes.
type Momentum struct {
	period       int
	upper, lower float64
	minScore     float64
}

func NewMomentum(cfg store.RuleConfig) *Momentum {
	p := cfg.Params
	return &Momentum{
		period:   p.Int("period", 14),
		upper:    p.Float("upper", 55),
		lower:    p.Float("lower", 45),
		minScore: p.Float("min_score", defaultMinScore),
	}
}

func (r *Momentum) Name() string { return "momentum" }

func (r *Momentum) MinBars() int { return r.period + 1 }

func (r *Momentum) Evaluate(mc types.MarketContext) types.RuleResult {
	if len(mc.Candles) < r.MinBars() {
		return insufficientData()
	}
	closes, _, _, _ := seriesOf(mc)
	rsi := ta.Last(ta.RSI(closes, r.period))

	switch {
	case rsi >= r.upper:
		score := clamp01((rsi - 50) / 20)
		return admit(score, types.DirBullish, r.minScore, fmt.Sprintf("rsi %.1f above %.1f", rsi, r.upper))
	case rsi <= r.lower:
		score := clamp01((50 - rsi) / 20)
		return admit(score, types.DirBearish, r.minScore, fmt.Sprintf("rsi %.1f below %.1f", rsi, r.lower))
	default:
		return noSignal(fmt.Sprintf("rsi %.1f neutral", rsi))
	}
}
