package engine

import (
	"context"
	"fmt"
	"sync"

	"rules-signal-engine/internal/interfaces"
	"rules-signal-engine/internal/logger"
	"rules-signal-engine/internal/rules"
	"rules-signal-engine/internal/store"
	"rules-signal-engine/internal/types"
)

// builders fixes the full rule set and its registration order. Output
// ordering everywhere follows this list, never goroutine completion
// order.
var builders = []struct {
	name  string
	build func(store.RuleConfig) interfaces.Rule
}{
	{"trend", func(c store.RuleConfig) interfaces.Rule { return rules.NewTrend(c) }},
	{"momentum", func(c store.RuleConfig) interfaces.Rule { return rules.NewMomentum(c) }},
	{"meanrevert", func(c store.RuleConfig) interfaces.Rule { return rules.NewMeanRevert(c) }},
	{"breakout", func(c store.RuleConfig) interfaces.Rule { return rules.NewBreakout(c) }},
}

type registered struct {
	rule   interfaces.Rule
	weight float64
}

type engine struct {
	cfg        *store.Config
	classifier interfaces.Classifier
	registry   []registered
}

func newEngine(cfg *store.Config, cls interfaces.Classifier) (*engine, error) {
	known := map[string]bool{}
	for _, b := range builders {
		known[b.name] = true
	}
	for name := range cfg.Rules {
		if !known[name] {
			return nil, fmt.Errorf("config references unknown rule '%s'", name)
		}
	}

	e := &engine{cfg: cfg, classifier: cls}
	for _, b := range builders {
		rc := cfg.Rules[b.name] // zero value means all defaults
		if !rc.IsEnabled() {
			continue
		}
		e.registry = append(e.registry, registered{
			rule:   b.build(rc),
			weight: rc.WeightOrDefault(),
		})
	}
	return e, nil
}

func (e *engine) WarmupBars() int {
	n := e.classifier.MinBars()
	for _, reg := range e.registry {
		if m := reg.rule.MinBars(); m > n {
			n = m
		}
	}
	return n
}

// EvaluateAll fans the enabled rules out to goroutines and gathers
// their results into registration-order slots. A panicking rule is
// converted to a non-passing result in its own slot; siblings and the
// batch are untouched.
func (e *engine) EvaluateAll(ctx context.Context, mc types.MarketContext) []types.RuleOutcome {
	logger.Debug(ctx, "Evaluating rules", "symbol", mc.Symbol, "rules", len(e.registry), "bars", len(mc.Candles))

	out := make([]types.RuleOutcome, len(e.registry))
	var wg sync.WaitGroup
	for i, reg := range e.registry {
		wg.Add(1)
		go func(i int, reg registered) {
			defer wg.Done()
			out[i] = types.RuleOutcome{Name: reg.rule.Name(), Result: evalOne(reg.rule, mc)}
		}(i, reg)
	}
	wg.Wait()
	return out
}

func evalOne(r interfaces.Rule, mc types.MarketContext) (res types.RuleResult) {
	defer func() {
		if p := recover(); p != nil {
			res = types.RuleResult{Reason: fmt.Sprintf("error %v", p)}
		}
	}()
	return r.Evaluate(mc)
}

// Aggregate computes the composite score as the weighted average of
// passing rules' scores; effective weight is config weight times the
// regime weight, each defaulting to 1.0. Non-passing rules contribute
// to neither numerator nor denominator. Side decision: weighted
// direction majority plus the configured score threshold.
func (e *engine) Aggregate(mc types.MarketContext, regime types.Regime, outcomes []types.RuleOutcome) types.CompositeSignal {
	sig := types.CompositeSignal{
		Symbol:    mc.Symbol,
		Timeframe: mc.Timeframe,
		Ts:        mc.Latest().Ts,
		Side:      types.SideNone,
		Regime:    regime,
		Rules:     make([]types.RuleOutcome, len(outcomes)),
	}

	num, den, dirSum := 0.0, 0.0, 0.0
	for i, oc := range outcomes {
		w := e.ruleWeight(oc.Name) * e.cfg.RegimeWeight(oc.Name, regime)
		oc.Weight = w
		sig.Rules[i] = oc
		if !oc.Result.Pass {
			continue
		}
		num += w * oc.Result.Score
		den += w
		dirSum += w * oc.Result.Score * float64(oc.Result.Direction)
	}

	if den == 0 {
		return sig
	}
	sig.Score = num / den
	switch {
	case sig.Score >= e.cfg.Thresholds.Buy && dirSum > 0:
		sig.Side = types.SideBuy
	case sig.Score >= e.cfg.Thresholds.Sell && dirSum < 0:
		sig.Side = types.SideSell
	}
	return sig
}

func (e *engine) ruleWeight(name string) float64 {
	for _, reg := range e.registry {
		if reg.rule.Name() == name {
			return reg.weight
		}
	}
	return 1.0
}

// Evaluate runs one full pass: classify (when the context carries no
// regime yet), evaluate all rules, aggregate.
func (e *engine) Evaluate(ctx context.Context, mc types.MarketContext) types.CompositeSignal {
	if mc.Regime == "" {
		mc.Regime = e.classifier.Classify(mc)
	}
	outcomes := e.EvaluateAll(ctx, mc)
	return e.Aggregate(mc, mc.Regime, outcomes)
}
