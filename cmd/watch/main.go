package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rules-signal-engine/internal/candles"
	"rules-signal-engine/internal/engine"
	"rules-signal-engine/internal/engine/engineobs"
	"rules-signal-engine/internal/interfaces"
	"rules-signal-engine/internal/logger"
	"rules-signal-engine/internal/metrics"
	"rules-signal-engine/internal/regime"
	"rules-signal-engine/internal/siglog"
	"rules-signal-engine/internal/store"
	"rules-signal-engine/internal/trace"
	"rules-signal-engine/internal/types"
)

func must(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		os.Exit(1)
	}
}

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to YAML config")
	flag.Parse()

	must(logger.Init())
	must(trace.Init())

	cfg, err := store.LoadConfig(*configPath)
	must(err)
	if cfg.Watch.CandleFile == "" {
		must(fmt.Errorf("watch.candle_file not configured"))
	}

	_ = siglog.CompressOlder(cfg.LogRetentionDays)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer trace.Shutdown(context.Background())

	cls := regime.New()
	eng, err := engine.New(cfg, cls)
	must(err)
	eng = engineobs.Wrap(eng)

	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)
	if addr := cfg.Watch.MetricsListen; addr != "" {
		go serveMetrics(ctx, addr, registry)
	}

	src := candles.NewCSV(cfg.Watch.CandleFile)
	logger.Info(ctx, "Watch started",
		"symbol", cfg.Watch.Symbol,
		"timeframe", cfg.Watch.Timeframe,
		"candle_file", cfg.Watch.CandleFile,
		"poll_seconds", cfg.Watch.PollSeconds,
	)

	ticker := time.NewTicker(time.Duration(cfg.Watch.PollSeconds) * time.Second)
	defer ticker.Stop()

	var lastTs int64
	for {
		lastTs = step(ctx, cfg, src, eng, recorder, lastTs)
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "Watch stopped")
			return
		case <-ticker.C:
		}
	}
}

// step re-reads the candle file and evaluates the latest context once.
// It returns the timestamp of the last evaluated bar so unchanged
// files are not re-evaluated.
func step(ctx context.Context, cfg *store.Config, src interfaces.CandleSource, eng interfaces.Engine, recorder interfaces.Recorder, lastTs int64) int64 {
	series, err := src.Candles(ctx, cfg.Watch.Symbol, cfg.Watch.Timeframe)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load candles", err, "file", cfg.Watch.CandleFile)
		return lastTs
	}
	if len(series) == 0 || series[len(series)-1].Ts == lastTs {
		return lastTs
	}

	mc := types.MarketContext{
		Symbol:    cfg.Watch.Symbol,
		Timeframe: cfg.Watch.Timeframe,
		Candles:   series,
	}
	sig := eng.Evaluate(ctx, mc)
	recorder.ObserveSignal(sig.Timeframe, sig.Regime, sig.Side)
	logger.Signal(ctx, sig)
	if sig.Side != types.SideNone {
		if err := siglog.Append(sig, map[string]any{"source": "watch"}); err != nil {
			logger.ErrorWithErr(ctx, "Failed to journal signal", err, "time", sig.Ts)
		}
	}
	return sig.Ts
}

func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info(ctx, "Metrics listener started", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.ErrorWithErr(ctx, "Metrics listener failed", err, "addr", addr)
	}
}
