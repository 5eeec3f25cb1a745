package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxengine/bus"
	"github.com/rustyeddy/fxengine/config"
	"github.com/rustyeddy/fxengine/engine"
	"github.com/rustyeddy/fxengine/portfolio"
	"github.com/rustyeddy/fxengine/sizing"
)

func newBacktestCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "backtest",
		Short: "Replay historic bars through the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFile(*configPath)
			if err != nil {
				return err
			}
			if cfg.Data.Kind != "csv" {
				return fmt.Errorf("backtest requires data.kind 'csv', got %q", cfg.Data.Kind)
			}
			return run(context.Background(), cfg, true)
		},
	}
}

func newTradeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "trade",
		Short: "Trade on a live bar supply",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFile(*configPath)
			if err != nil {
				return err
			}
			if cfg.Data.Kind == "csv" {
				return fmt.Errorf("trade requires a live data source, got %q", cfg.Data.Kind)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			return run(ctx, cfg, false)
		},
	}
}

// run assembles the full pipeline from config and drives it to completion.
func run(ctx context.Context, cfg *config.Config, showProgress bool) error {
	log := cfg.BuildLogger()
	b := bus.New(cfg.Symbols)

	bars, err := cfg.BuildDataHandler(ctx, b, log)
	if err != nil {
		return fmt.Errorf("build data handler: %w", err)
	}

	jnl, err := cfg.BuildJournal()
	if err != nil {
		return fmt.Errorf("build journal: %w", err)
	}
	defer jnl.Close()

	opts := []portfolio.Option{portfolio.WithJournal(jnl)}
	if cfg.SharpePeriods > 0 {
		opts = append(opts, portfolio.WithSharpePeriods(cfg.SharpePeriods))
	}
	pf := portfolio.New(bars, b, sizing.NewFixed(cfg.Strategy.Lots),
		time.Now().UTC(), cfg.InitialCapital, opts...)

	st, err := cfg.BuildStrategy(bars, b, pf)
	if err != nil {
		return fmt.Errorf("build strategy: %w", err)
	}

	exec, err := cfg.BuildExecution(bars, b, log)
	if err != nil {
		return fmt.Errorf("build execution handler: %w", err)
	}

	heartbeat, err := cfg.HeartbeatDuration()
	if err != nil {
		return err
	}

	engOpts := []engine.Option{engine.WithHeartbeat(heartbeat)}
	if showProgress {
		engOpts = append(engOpts, engine.WithProgress(os.Stdout))
	}
	eng := engine.New(bars, b, st, pf, exec, log, engOpts...)

	stats, err := eng.Run()
	if err != nil {
		return err
	}
	eng.PrintPerformance(os.Stdout, stats)
	return nil
}
