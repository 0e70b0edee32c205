package interfaces

import (
	"context"

	"rules-signal-engine/internal/types"
)

type Engine interface {
	// EvaluateAll runs every enabled rule once, in registration order.
	// A rule panic is converted to a non-passing result; it never
	// aborts the batch.
	EvaluateAll(ctx context.Context, mc types.MarketContext) []types.RuleOutcome

	// Aggregate folds per-rule outcomes into one composite signal using
	// the regime weight table.
	Aggregate(mc types.MarketContext, regime types.Regime, outcomes []types.RuleOutcome) types.CompositeSignal

	// Evaluate classifies (when the context carries no regime),
	// evaluates and aggregates in one call.
	Evaluate(ctx context.Context, mc types.MarketContext) types.CompositeSignal

	// WarmupBars is the minimum history any bar needs before the
	// engine produces meaningful output.
	WarmupBars() int
}
