// Package rules holds the rule evaluators. Each rule is one
// self-contained tradeable hypothesis: stateless, reentrant, and a pure
// function of the market context plus its own config. Rules degrade to
// a non-passing result on short history instead of erroring.
package rules

import (
	"fmt"

	"rules-signal-engine/internal/types"
)

const defaultMinScore = 0.2

func seriesOf(mc types.MarketContext) (closes, highs, lows, vols []float64) {
	closes = make([]float64, len(mc.Candles))
	highs = make([]float64, len(mc.Candles))
	lows = make([]float64, len(mc.Candles))
	vols = make([]float64, len(mc.Candles))
	for i, c := range mc.Candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
		vols[i] = c.Vol
	}
	return
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func insufficientData() types.RuleResult {
	return types.RuleResult{Reason: "insufficient data"}
}

func noSignal(reason string) types.RuleResult {
	return types.RuleResult{Reason: reason}
}

// admit applies a rule's admission threshold: scores below it collapse
// to a non-passing zero result so callers only see conviction they can
// act on.
func admit(score float64, dir int, minScore float64, reason string) types.RuleResult {
	score = clamp01(score)
	if score < minScore {
		return types.RuleResult{
			Reason: fmt.Sprintf("below admission threshold (%.2f < %.2f)", score, minScore),
		}
	}
	return types.RuleResult{Pass: true, Score: score, Direction: dir, Reason: reason}
}
