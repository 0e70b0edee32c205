package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"rules-signal-engine/internal/backtest"
	"rules-signal-engine/internal/candles"
	"rules-signal-engine/internal/engine"
	"rules-signal-engine/internal/logger"
	"rules-signal-engine/internal/regime"
	"rules-signal-engine/internal/siglog"
	"rules-signal-engine/internal/store"
	"rules-signal-engine/internal/trace"
	"rules-signal-engine/internal/types"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "backtest: %v\n", err)
	os.Exit(1)
}

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to YAML config")
	candleFile := flag.String("candles", "", "candle CSV file (ts,open,high,low,close,volume)")
	symbol := flag.String("symbol", "UNKNOWN", "instrument symbol")
	timeframe := flag.String("timeframe", "1d", "candle timeframe label")
	withSignals := flag.Bool("signals", false, "include per-bar signals in the JSON output")
	journal := flag.Bool("journal", false, "append actionable signals to the signal journal")
	flag.Parse()

	if *candleFile == "" {
		fatal(fmt.Errorf("missing -candles flag"))
	}

	if err := logger.Init(); err != nil {
		fatal(err)
	}
	if err := trace.Init(); err != nil {
		fatal(err)
	}

	// SIGINT mid-run truncates the backtest and still reports the
	// bars processed so far.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer trace.Shutdown(context.Background())

	cfg, err := store.LoadConfig(*configPath)
	if err != nil {
		fatal(err)
	}

	cls := regime.New()
	eng, err := engine.New(cfg, cls)
	if err != nil {
		fatal(err)
	}

	series, err := candles.NewCSV(*candleFile).Candles(ctx, *symbol, *timeframe)
	if err != nil {
		fatal(err)
	}

	runner := backtest.NewRunner(eng, cls, nil)
	result, err := runner.Run(ctx, *symbol, *timeframe, series)
	if err != nil {
		fatal(err)
	}

	if *journal {
		for _, sig := range result.Signals {
			if sig.Side == types.SideNone {
				continue
			}
			if err := siglog.Append(sig, map[string]any{"source": "backtest"}); err != nil {
				logger.ErrorWithErr(ctx, "Failed to journal signal", err, "time", sig.Ts)
			}
		}
	}

	out := any(result.Summary)
	if *withSignals {
		out = result
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(b))
	if result.Truncated {
		fmt.Fprintln(os.Stderr, "backtest: truncated by signal")
	}
}
