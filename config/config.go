// Package config loads, validates and materializes the run configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rustyeddy/fxengine/market"
	"gopkg.in/yaml.v3"
)

// Config represents the complete run configuration, shared by backtests and
// live trading.
type Config struct {
	Symbols        []string        `json:"symbols" yaml:"symbols"`
	InitialCapital float64         `json:"initial_capital" yaml:"initial_capital"`
	Heartbeat      string          `json:"heartbeat,omitempty" yaml:"heartbeat,omitempty"`
	SharpePeriods  float64         `json:"sharpe_periods,omitempty" yaml:"sharpe_periods,omitempty"`
	LogFile        string          `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	Data           DataConfig      `json:"data" yaml:"data"`
	Strategy       StrategyConfig  `json:"strategy" yaml:"strategy"`
	Execution      ExecutionConfig `json:"execution" yaml:"execution"`
	Oanda          OandaConfig     `json:"oanda,omitempty" yaml:"oanda,omitempty"`
	Journal        JournalConfig   `json:"journal" yaml:"journal"`
}

// DataConfig selects and tunes the bar supply.
type DataConfig struct {
	Kind         string `json:"kind" yaml:"kind"` // "csv", "oanda-poll", "oanda-stream" or "ws"
	CSVDir       string `json:"csv_dir,omitempty" yaml:"csv_dir,omitempty"`
	Timeframe    string `json:"timeframe,omitempty" yaml:"timeframe,omitempty"`
	Backfill     int    `json:"backfill,omitempty" yaml:"backfill,omitempty"`
	PollInterval string `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
	RetryDelay   string `json:"retry_delay,omitempty" yaml:"retry_delay,omitempty"`
	MaxAttempts  int    `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	TickURL      string `json:"tick_url,omitempty" yaml:"tick_url,omitempty"`
}

// StrategyConfig selects the strategy and its parameters.
type StrategyConfig struct {
	Kind           string  `json:"kind" yaml:"kind"` // "noop", "mac" or "pinbar"
	ShortWindow    int     `json:"short_window,omitempty" yaml:"short_window,omitempty"`
	LongWindow     int     `json:"long_window,omitempty" yaml:"long_window,omitempty"`
	StopLossPips   float64 `json:"stop_loss_pips,omitempty" yaml:"stop_loss_pips,omitempty"`
	TakeProfitPips float64 `json:"take_profit_pips,omitempty" yaml:"take_profit_pips,omitempty"`
	Lots           float64 `json:"lots" yaml:"lots"`
}

// ExecutionConfig selects the execution handler.
type ExecutionConfig struct {
	Kind string `json:"kind" yaml:"kind"` // "simulated" or "oanda"
}

// OandaConfig carries broker credentials.
type OandaConfig struct {
	Token     string `json:"token,omitempty" yaml:"token,omitempty"`
	AccountID string `json:"account_id,omitempty" yaml:"account_id,omitempty"`
	Practice  bool   `json:"practice,omitempty" yaml:"practice,omitempty"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Kind       string `json:"kind" yaml:"kind"` // "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file, trying YAML first and
// falling back to JSON, then validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// HeartbeatDuration parses the heartbeat setting. Empty means no pause.
func (c *Config) HeartbeatDuration() (time.Duration, error) {
	if c.Heartbeat == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Heartbeat)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols is required")
	}
	for _, s := range c.Symbols {
		if !market.KnownInstrument(s) {
			return fmt.Errorf("unknown instrument: %s", s)
		}
	}
	if c.InitialCapital < 0 {
		return fmt.Errorf("initial_capital must not be negative")
	}
	if c.Heartbeat != "" {
		if _, err := time.ParseDuration(c.Heartbeat); err != nil {
			return fmt.Errorf("heartbeat: %w", err)
		}
	}
	if c.SharpePeriods < 0 {
		return fmt.Errorf("sharpe_periods must not be negative")
	}

	if err := c.validateData(); err != nil {
		return err
	}
	if err := c.validateStrategy(); err != nil {
		return err
	}

	switch c.Execution.Kind {
	case "simulated":
	case "oanda":
		if c.Oanda.Token == "" || c.Oanda.AccountID == "" {
			return fmt.Errorf("oanda token and account_id required for oanda execution")
		}
	default:
		return fmt.Errorf("execution.kind must be 'simulated' or 'oanda'")
	}

	switch c.Journal.Kind {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for csv kind")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite kind")
		}
	default:
		return fmt.Errorf("journal.kind must be 'csv' or 'sqlite'")
	}
	return nil
}

func (c *Config) validateData() error {
	d := c.Data
	switch d.Kind {
	case "csv":
		if d.CSVDir == "" {
			return fmt.Errorf("data.csv_dir required for csv kind")
		}
	case "oanda-poll", "oanda-stream":
		if c.Oanda.Token == "" || c.Oanda.AccountID == "" {
			return fmt.Errorf("oanda token and account_id required for %s data", d.Kind)
		}
		if !market.Timeframe(d.Timeframe).Valid() {
			return fmt.Errorf("unknown timeframe: %q", d.Timeframe)
		}
	case "ws":
		if d.TickURL == "" {
			return fmt.Errorf("data.tick_url required for ws kind")
		}
		if !market.Timeframe(d.Timeframe).Valid() {
			return fmt.Errorf("unknown timeframe: %q", d.Timeframe)
		}
	default:
		return fmt.Errorf("data.kind must be 'csv', 'oanda-poll', 'oanda-stream' or 'ws'")
	}

	for _, field := range []struct {
		name, value string
	}{
		{"data.poll_interval", d.PollInterval},
		{"data.retry_delay", d.RetryDelay},
	} {
		if field.value == "" {
			continue
		}
		if _, err := time.ParseDuration(field.value); err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
	}
	if d.MaxAttempts < 0 {
		return fmt.Errorf("data.max_attempts must not be negative")
	}
	if d.Backfill < 0 {
		return fmt.Errorf("data.backfill must not be negative")
	}
	return nil
}

func (c *Config) validateStrategy() error {
	s := c.Strategy
	switch s.Kind {
	case "noop":
	case "mac":
		if s.ShortWindow <= 0 || s.LongWindow <= 0 || s.ShortWindow >= s.LongWindow {
			return fmt.Errorf("mac strategy needs 0 < short_window < long_window")
		}
	case "pinbar":
		if s.StopLossPips <= 0 || s.TakeProfitPips <= 0 {
			return fmt.Errorf("pinbar strategy needs positive stop_loss_pips and take_profit_pips")
		}
	default:
		return fmt.Errorf("strategy.kind must be 'noop', 'mac' or 'pinbar'")
	}
	if s.Lots <= 0 {
		return fmt.Errorf("strategy.lots must be positive")
	}
	return nil
}

// Default returns a configuration with sensible defaults for a CSV backtest.
func Default() *Config {
	return &Config{
		Symbols:        []string{"EUR_USD"},
		InitialCapital: 100000,
		SharpePeriods:  252,
		Data: DataConfig{
			Kind:   "csv",
			CSVDir: "./data",
		},
		Strategy: StrategyConfig{
			Kind:        "mac",
			ShortWindow: 25,
			LongWindow:  50,
			Lots:        1,
		},
		Execution: ExecutionConfig{Kind: "simulated"},
		Journal: JournalConfig{
			Kind:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
	}
}
