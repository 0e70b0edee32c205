// Package backtest replays the rules engine over a historical candle
// series, bar by bar, with a strict no-look-ahead guarantee: the
// context for bar i is always the prefix candles[0..i].
package backtest

import (
	"context"
	"fmt"
	"time"

	"rules-signal-engine/internal/interfaces"
	"rules-signal-engine/internal/logger"
	"rules-signal-engine/internal/types"
)

type Runner struct {
	engine     interfaces.Engine
	classifier interfaces.Classifier
	recorder   interfaces.Recorder
}

// NewRunner wires a runner. recorder may be nil when no operational
// counters are wanted.
func NewRunner(eng interfaces.Engine, cls interfaces.Classifier, rec interfaces.Recorder) *Runner {
	return &Runner{engine: eng, classifier: cls, recorder: rec}
}

// Run replays candles through the engine in increasing index order.
// Cancellation is cooperative and checked between bars: a cancelled
// context returns the work accumulated so far with Truncated set, not
// an error. The only hard failure is a malformed series.
func (r *Runner) Run(ctx context.Context, symbol, timeframe string, candles []types.Candle) (types.BacktestResult, error) {
	result := types.BacktestResult{Symbol: symbol, Timeframe: timeframe}

	for i := 1; i < len(candles); i++ {
		if candles[i].Ts <= candles[i-1].Ts {
			return result, fmt.Errorf("candle series not strictly increasing at index %d", i)
		}
	}

	op := logger.StartOperation(ctx, "backtest.Run",
		"symbol", symbol, "timeframe", timeframe, "candles", len(candles))
	ctx = op.GetContext()
	start := time.Now()

	warmup := r.engine.WarmupBars()
	passCounts := map[string]int{}
	byRegime := map[types.Regime]int{}
	totalScore, maxScore := 0.0, 0.0

bars:
	for i := warmup - 1; i >= 0 && i < len(candles); i++ {
		select {
		case <-ctx.Done():
			result.Truncated = true
			logger.Warn(ctx, "Backtest truncated by cancellation",
				"symbol", symbol, "bar", i, "signals", len(result.Signals))
			break bars
		default:
		}

		mc := types.MarketContext{
			Symbol:    symbol,
			Timeframe: timeframe,
			Candles:   candles[:i+1],
		}
		sig := r.evaluateBar(ctx, &mc)
		result.Signals = append(result.Signals, sig)

		byRegime[sig.Regime]++
		totalScore += sig.Score
		if sig.Score > maxScore {
			maxScore = sig.Score
		}
		for _, oc := range sig.Rules {
			if oc.Result.Pass {
				passCounts[oc.Name]++
			}
		}
		if r.recorder != nil {
			r.recorder.ObserveSignal(timeframe, sig.Regime, sig.Side)
		}
	}

	result.Summary = summarize(result.Signals, passCounts, byRegime, totalScore, maxScore)
	if r.recorder != nil {
		r.recorder.ObserveBacktest(timeframe, result.Summary.Bars, time.Since(start))
	}
	op.End("bars", result.Summary.Bars, "buys", result.Summary.Buys, "sells", result.Summary.Sells)
	return result, nil
}

// evaluateBar runs one bar through classify/evaluate/aggregate. Rule
// panics are already isolated inside the engine; anything escaping
// beyond that degrades this single bar to a NONE signal instead of
// halting the replay.
func (r *Runner) evaluateBar(ctx context.Context, mc *types.MarketContext) (sig types.CompositeSignal) {
	defer func() {
		if p := recover(); p != nil {
			sig = types.CompositeSignal{
				Symbol:    mc.Symbol,
				Timeframe: mc.Timeframe,
				Ts:        mc.Latest().Ts,
				Side:      types.SideNone,
				Regime:    types.RegimeRange,
				Reason:    fmt.Sprintf("error %v", p),
			}
			logger.Error(ctx, "Bar evaluation failed",
				"symbol", mc.Symbol, "time", mc.Latest().Ts, "panic", fmt.Sprintf("%v", p))
		}
	}()

	mc.Regime = r.classifier.Classify(*mc)
	outcomes := r.engine.EvaluateAll(ctx, *mc)
	return r.engine.Aggregate(*mc, mc.Regime, outcomes)
}

func summarize(signals []types.CompositeSignal, passCounts map[string]int, byRegime map[types.Regime]int, totalScore, maxScore float64) types.Summary {
	s := types.Summary{
		Bars:      len(signals),
		ByRegime:  byRegime,
		PassRates: map[string]float64{},
		MaxScore:  maxScore,
	}
	for _, sig := range signals {
		switch sig.Side {
		case types.SideBuy:
			s.Buys++
		case types.SideSell:
			s.Sells++
		default:
			s.Nones++
		}
	}
	if s.Bars > 0 {
		s.MeanScore = totalScore / float64(s.Bars)
		for name, n := range passCounts {
			s.PassRates[name] = float64(n) / float64(s.Bars)
		}
	}
	return s
}
