package interfaces

import (
	"rules-signal-engine/internal/types"
)

// Rule is one stateless tradeable hypothesis. Evaluate must be a pure
// function of the context plus the rule's own config: no I/O, no shared
// state, no mutation of the context. Implementations return a
// non-passing result (never an error) when history is shorter than
// MinBars.
type Rule interface {
	Name() string
	MinBars() int
	Evaluate(mc types.MarketContext) types.RuleResult
}
