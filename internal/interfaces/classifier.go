package interfaces

import (
	"rules-signal-engine/internal/types"
)

// Classifier assigns exactly one regime to a context. It is total:
// ambiguous or degenerate inputs resolve to a documented default
// rather than an "unclassified" state.
type Classifier interface {
	Classify(mc types.MarketContext) types.Regime
	MinBars() int
}
