package rules

import (
	"fmt"

	"rules-signal-engine/internal/store"
	"rules-signal-engine/internal/ta"
	"rules-signal-engine/internal/types"
)

// MeanRevert fades Bollinger band breaches: a close below the lower
// band is a bullish reversion candidate, above the upper band bearish.
// Conviction is the excursion beyond the band relative to band width.
type MeanRevert struct {
	period   int
	stddev   float64
	minScore float64
}

func NewMeanRevert(cfg store.RuleConfig) *MeanRevert {
	p := cfg.Params
	return &MeanRevert{
		period:   p.Int("period", 20),
		stddev:   p.Float("stddev", 2.0),
		minScore: p.Float("min_score", defaultMinScore),
	}
}

func (r *MeanRevert) Name() string { return "meanrevert" }

func (r *MeanRevert) MinBars() int { return r.period }

func (r *MeanRevert) Evaluate(mc types.MarketContext) types.RuleResult {
	if len(mc.Candles) < r.MinBars() {
		return insufficientData()
	}
	closes, _, _, _ := seriesOf(mc)
	bands := ta.Bollinger(closes, r.period, r.stddev)

	upper := ta.Last(bands.Upper)
	lower := ta.Last(bands.Lower)
	width := upper - lower
	if width <= 0 {
		return noSignal("no band width")
	}

	price := closes[len(closes)-1]
	switch {
	case price < lower:
		score := clamp01((lower - price) / width)
		return admit(score, types.DirBullish, r.minScore,
			fmt.Sprintf("close %.4f below lower band %.4f", price, lower))
	case price > upper:
		score := clamp01((price - upper) / width)
		return admit(score, types.DirBearish, r.minScore,
			fmt.Sprintf("close %.4f above upper band %.4f", price, upper))
	default:
		return noSignal("close inside bands")
	}
}
