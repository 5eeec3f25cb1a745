package config

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/fxengine/bus"
	"github.com/rustyeddy/fxengine/execution"
	"github.com/rustyeddy/fxengine/feed"
	"github.com/rustyeddy/fxengine/journal"
	"github.com/rustyeddy/fxengine/logger"
	"github.com/rustyeddy/fxengine/market"
	"github.com/rustyeddy/fxengine/oanda"
	"github.com/rustyeddy/fxengine/strategy"
)

// BuildLogger returns the run log sink. Without a log_file the log is
// discarded.
func (c *Config) BuildLogger() logger.Logger {
	if c.LogFile == "" {
		return logger.Nop{}
	}
	return logger.NewText(c.LogFile)
}

// BuildDataHandler materializes the configured bar supply.
func (c *Config) BuildDataHandler(ctx context.Context, b *bus.Bus, log logger.Logger) (feed.DataHandler, error) {
	switch c.Data.Kind {
	case "csv":
		return feed.NewHistoric(b, c.Data.CSVDir, c.Symbols)

	case "oanda-poll":
		client := c.oandaClient()
		tf := market.Timeframe(c.Data.Timeframe)
		poller := feed.NewPoller(client, c.Symbols, feed.PollerConfig{
			Timeframe:   tf,
			Interval:    c.duration(c.Data.PollInterval, tf.Duration()),
			RetryDelay:  c.duration(c.Data.RetryDelay, 5*time.Second),
			MaxAttempts: orDefault(c.Data.MaxAttempts, 5),
		}, log)
		return feed.NewLive(ctx, b, c.Symbols, poller, client, tf, c.Data.Backfill)

	case "oanda-stream":
		client := c.oandaClient()
		tf := market.Timeframe(c.Data.Timeframe)
		agg := feed.NewAggregator(client.NewPricingStream(c.Symbols), c.Symbols, tf, log)
		return feed.NewLive(ctx, b, c.Symbols, agg, client, tf, c.Data.Backfill)

	case "ws":
		tf := market.Timeframe(c.Data.Timeframe)
		ticks := feed.NewWSTickSource(c.Data.TickURL, nil)
		agg := feed.NewAggregator(ticks, c.Symbols, tf, log)
		var source feed.CandleSource
		if c.Oanda.Token != "" {
			source = c.oandaClient()
		}
		return feed.NewLive(ctx, b, c.Symbols, agg, source, tf, c.Data.Backfill)
	}
	return nil, fmt.Errorf("unknown data kind: %q", c.Data.Kind)
}

// BuildExecution materializes the configured execution handler.
func (c *Config) BuildExecution(bars feed.DataHandler, b *bus.Bus, log logger.Logger) (execution.Handler, error) {
	switch c.Execution.Kind {
	case "simulated":
		return execution.NewSimulated(bars, b, log), nil
	case "oanda":
		return execution.NewOanda(c.oandaClient(), b, log), nil
	}
	return nil, fmt.Errorf("unknown execution kind: %q", c.Execution.Kind)
}

// BuildJournal materializes the configured journal.
func (c *Config) BuildJournal() (journal.Journal, error) {
	switch c.Journal.Kind {
	case "csv":
		return journal.NewCSV(c.Journal.EquityFile, c.Journal.TradesFile, c.Symbols)
	case "sqlite":
		return journal.NewSQLite(c.Journal.DBPath)
	}
	return nil, fmt.Errorf("unknown journal kind: %q", c.Journal.Kind)
}

// BuildStrategy materializes the configured strategy.
func (c *Config) BuildStrategy(bars feed.DataHandler, b *bus.Bus, positions strategy.PositionView) (strategy.Strategy, error) {
	switch c.Strategy.Kind {
	case "noop":
		return strategy.Noop{}, nil
	case "mac":
		return strategy.NewMovingAverageCross(bars, b, c.Strategy.ShortWindow, c.Strategy.LongWindow), nil
	case "pinbar":
		return strategy.NewPinBar(bars, b, positions, c.Strategy.StopLossPips, c.Strategy.TakeProfitPips), nil
	}
	return nil, fmt.Errorf("unknown strategy kind: %q", c.Strategy.Kind)
}

func (c *Config) oandaClient() *oanda.Client {
	return oanda.NewClient(c.Oanda.Token, c.Oanda.AccountID, c.Oanda.Practice)
}

// duration parses a validated duration string, falling back when unset.
func (c *Config) duration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func orDefault(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
