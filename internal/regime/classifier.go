// Package regime partitions market behavior into three mutually
// exclusive modes so that rule families can be weighted differently.
// The classifier is total: whenever the evidence is ambiguous or the
// history too short it answers RANGE, never a fourth state.
package regime

import (
	"math"

	"rules-signal-engine/internal/interfaces"
	"rules-signal-engine/internal/ta"
	"rules-signal-engine/internal/types"
)

const (
	fastPeriod = 10
	slowPeriod = 30
	atrPeriod  = 14
	smaPeriod  = 20

	// Trend strength is EMA separation in ATR units; at or above this
	// the market counts as trending.
	trendStrengthMin = 1.0

	// Price stretch from the rolling mean, in band half-widths; at or
	// above this a non-trending market counts as mean-reverting.
	stretchMin = 0.8
)

type classifier struct{}

var _ interfaces.Classifier = classifier{}

func New() interfaces.Classifier {
	return classifier{}
}

func (classifier) MinBars() int {
	return slowPeriod + 1
}

func (c classifier) Classify(mc types.MarketContext) types.Regime {
	if len(mc.Candles) < c.MinBars() {
		return types.RegimeRange
	}

	closes := make([]float64, len(mc.Candles))
	highs := make([]float64, len(mc.Candles))
	lows := make([]float64, len(mc.Candles))
	for i, cd := range mc.Candles {
		closes[i] = cd.Close
		highs[i] = cd.High
		lows[i] = cd.Low
	}

	sep := math.Abs(ta.Last(ta.EMA(closes, fastPeriod)) - ta.Last(ta.EMA(closes, slowPeriod)))
	atr := ta.Last(ta.ATR(highs, lows, closes, atrPeriod))

	if atr == 0 {
		// Degenerate series: a flat market has no trend to speak of.
		if sep > 0 {
			return types.RegimeTrending
		}
		return types.RegimeRange
	}
	if sep/atr >= trendStrengthMin {
		return types.RegimeTrending
	}

	sd := ta.Last(ta.StdDev(closes, smaPeriod))
	if sd == 0 {
		return types.RegimeRange
	}
	mean := ta.Last(ta.SMA(closes, smaPeriod))
	stretch := math.Abs(closes[len(closes)-1]-mean) / (2 * sd)
	if stretch >= stretchMin {
		return types.RegimeMeanRevert
	}
	return types.RegimeRange
}
