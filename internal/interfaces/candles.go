package interfaces

import (
	"context"

	"rules-signal-engine/internal/types"
)

// CandleSource yields an ordered candle series for one symbol and
// timeframe. Implementations live outside the core (CSV files in this
// repo); the core only requires strictly increasing timestamps.
type CandleSource interface {
	Candles(ctx context.Context, symbol, timeframe string) ([]types.Candle, error)
}
