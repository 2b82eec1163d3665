// Command analyze runs the orchestrator exactly once for a single
// symbol and prints the resulting verdict as JSON, honoring the CLI
// contract's exit codes: 0 success, 2 invalid config, 3 data error,
// 4 internal error.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/aliyansayz/marketwatch/internal/dataprovider"
	"github.com/aliyansayz/marketwatch/internal/groupmodel"
	"github.com/aliyansayz/marketwatch/internal/model"
	"github.com/aliyansayz/marketwatch/internal/orchestrator"
	"github.com/aliyansayz/marketwatch/internal/strategy"
)

const (
	exitSuccess      = 0
	exitInvalidConfig = 2
	exitDataError     = 3
	exitInternalError = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	symbol := fs.String("symbol", "", "symbol to analyze, e.g. RELIANCE")
	assetClass := fs.String("asset-class", "stocks", "forex|stocks|crypto|indices|futures")
	interval := fs.String("interval", "5m", "bar interval: 1m|5m|15m|1h|4h|1d")
	period := fs.String("period", "1mo", "lookback period: 1d|5d|7d|1wk|1mo|3mo|6mo|1y|2y|5y|max")
	strategyName := fs.String("strategy", "default-check-single-timeframe", "strategy registered name")
	timeout := fs.Duration("timeout", 30*time.Second, "per-call fetch timeout")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitInvalidConfig
	}
	if *symbol == "" {
		fmt.Fprintln(os.Stderr, "analyze: -symbol is required")
		return exitInvalidConfig
	}

	cfg := groupmodel.ResolvedConfig{
		Symbol:       *symbol,
		AssetClass:   model.AssetClass(*assetClass),
		Interval:     model.Interval(*interval),
		Period:       model.Period(*period),
		StrategyName: *strategyName,
		AlertPolicy:  model.DefaultAlertPolicy(),
	}
	if !cfg.Interval.Valid() {
		fmt.Fprintf(os.Stderr, "analyze: invalid interval %q\n", *interval)
		return exitInvalidConfig
	}

	registry := strategy.NewDefaultRegistry()
	if _, err := registry.Get(cfg.StrategyName); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitInvalidConfig
	}

	provider := dataprovider.NewSynthetic()
	orch := orchestrator.New(provider, registry, *timeout)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+5*time.Second)
	defer cancel()

	verdict, err := orch.Analyze(ctx, cfg)
	if err != nil {
		switch {
		case model.IsKind(err, model.KindDataUnavailable):
			fmt.Fprintln(os.Stderr, err)
			return exitDataError
		case model.IsKind(err, model.KindInvalidFrame), model.IsKind(err, model.KindParameterValidation),
			model.IsKind(err, model.KindUnknownStrategy), model.IsKind(err, model.KindUnknownIndicator):
			fmt.Fprintln(os.Stderr, err)
			return exitInvalidConfig
		default:
			fmt.Fprintln(os.Stderr, err)
			return exitInternalError
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(verdict); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitInternalError
	}

	return exitSuccess
}
