// Package metrics implements the operational-counter collaborator on
// Prometheus. The core never imports it; the runner and cmd layers
// hand it in through the Recorder interface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rules-signal-engine/internal/interfaces"
	"rules-signal-engine/internal/types"
)

type Recorder struct {
	signals       *prometheus.CounterVec
	backtestRuns  *prometheus.CounterVec
	backtestBars  *prometheus.CounterVec
	backtestTimes *prometheus.HistogramVec
}

var _ interfaces.Recorder = (*Recorder)(nil)

func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signal_engine_signals_total",
			Help: "Composite signals produced, by timeframe, regime and side.",
		}, []string{"timeframe", "regime", "side"}),
		backtestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signal_engine_backtest_runs_total",
			Help: "Completed backtest runs, by timeframe.",
		}, []string{"timeframe"}),
		backtestBars: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signal_engine_backtest_bars_total",
			Help: "Bars evaluated across backtest runs, by timeframe.",
		}, []string{"timeframe"}),
		backtestTimes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signal_engine_backtest_duration_seconds",
			Help:    "Wall-clock duration of backtest runs, by timeframe.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"timeframe"}),
	}
	reg.MustRegister(r.signals, r.backtestRuns, r.backtestBars, r.backtestTimes)
	return r
}

func (r *Recorder) ObserveSignal(timeframe string, regime types.Regime, side types.Side) {
	r.signals.WithLabelValues(timeframe, string(regime), string(side)).Inc()
}

func (r *Recorder) ObserveBacktest(timeframe string, bars int, d time.Duration) {
	r.backtestRuns.WithLabelValues(timeframe).Inc()
	r.backtestBars.WithLabelValues(timeframe).Add(float64(bars))
	r.backtestTimes.WithLabelValues(timeframe).Observe(d.Seconds())
}
