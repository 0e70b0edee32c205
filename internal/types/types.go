package types

type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// Regime is the classified market behavior mode. The classifier is
// exhaustive: every context maps to exactly one of the three values.
type Regime string

const (
	RegimeTrending   Regime = "TRENDING"
	RegimeRange      Regime = "RANGE"
	RegimeMeanRevert Regime = "MEAN_REVERT"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
	SideNone Side = "NONE"
)

const (
	DirBullish = 1
	DirBearish = -1
	DirNeutral = 0
)

// MarketContext is the read-only view a rule evaluates against.
// Candles are ordered by strictly increasing Ts; rules must not mutate it.
type MarketContext struct {
	Symbol    string
	Timeframe string
	Candles   []Candle
	Regime    Regime
	State     map[string]any
}

func (mc MarketContext) Latest() Candle {
	if len(mc.Candles) == 0 {
		return Candle{}
	}
	return mc.Candles[len(mc.Candles)-1]
}

// RuleResult is one rule's verdict for one context. Pass=false with
// Score=0 covers both "no signal" and an evaluation failure; the Reason
// text carries the distinction. Direction is DirNeutral unless Pass.
type RuleResult struct {
	Pass      bool    `json:"pass"`
	Score     float64 `json:"score"`
	Direction int     `json:"direction"`
	Reason    string  `json:"reason"`
}

// RuleOutcome pairs a rule name with its result. Weight is the effective
// weight (config weight x regime weight) applied during aggregation.
type RuleOutcome struct {
	Name   string     `json:"name"`
	Result RuleResult `json:"result"`
	Weight float64    `json:"weight"`
}

// CompositeSignal is the regime-weighted aggregate for one context.
// Rules preserves registration order regardless of evaluation order.
type CompositeSignal struct {
	Symbol    string        `json:"symbol"`
	Timeframe string        `json:"timeframe"`
	Ts        int64         `json:"time"`
	Side      Side          `json:"side"`
	Score     float64       `json:"score"`
	Regime    Regime        `json:"regime"`
	Rules     []RuleOutcome `json:"rules"`
	Reason    string        `json:"reason,omitempty"`
}

type Summary struct {
	Bars      int                `json:"bars"`
	Buys      int                `json:"buys"`
	Sells     int                `json:"sells"`
	Nones     int                `json:"nones"`
	ByRegime  map[Regime]int     `json:"by_regime"`
	PassRates map[string]float64 `json:"pass_rates"`
	MeanScore float64            `json:"mean_score"`
	MaxScore  float64            `json:"max_score"`
}

// BacktestResult accumulates one replay of the engine over history.
// Truncated marks a run cut short by context cancellation.
type BacktestResult struct {
	Symbol    string            `json:"symbol"`
	Timeframe string            `json:"timeframe"`
	Signals   []CompositeSignal `json:"signals"`
	Summary   Summary           `json:"summary"`
	Truncated bool              `json:"truncated,omitempty"`
}
