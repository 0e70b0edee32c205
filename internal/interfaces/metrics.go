package interfaces

import (
	"time"

	"rules-signal-engine/internal/types"
)

// Recorder receives operational counters from the engine and backtest
// runner. Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveSignal(timeframe string, regime types.Regime, side types.Side)
	ObserveBacktest(timeframe string, bars int, d time.Duration)
}
