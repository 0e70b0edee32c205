package engineobs

import (
	"context"
	"time"

	"rules-signal-engine/internal/interfaces"
	"rules-signal-engine/internal/logger"
	"rules-signal-engine/internal/trace"
	"rules-signal-engine/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Evaluate(ctx context.Context, mc types.MarketContext) types.CompositeSignal {
	ctx, span := trace.StartSpan(ctx, "engine.Evaluate")
	defer span.End()

	start := time.Now()

	sig := oe.engine.Evaluate(ctx, mc)

	logger.InfoSkip(ctx, 1, "Evaluation completed",
		"symbol", mc.Symbol,
		"timeframe", mc.Timeframe,
		"side", string(sig.Side),
		"score", sig.Score,
		"regime", string(sig.Regime),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return sig
}

func (oe *observableEngine) EvaluateAll(ctx context.Context, mc types.MarketContext) []types.RuleOutcome {
	ctx, span := trace.StartSpan(ctx, "engine.EvaluateAll")
	defer span.End()
	return oe.engine.EvaluateAll(ctx, mc)
}

func (oe *observableEngine) Aggregate(mc types.MarketContext, regime types.Regime, outcomes []types.RuleOutcome) types.CompositeSignal {
	return oe.engine.Aggregate(mc, regime, outcomes)
}

func (oe *observableEngine) WarmupBars() int {
	return oe.engine.WarmupBars()
}
