package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Default().Validate())
}

func TestLoadFromYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
symbols: [EUR_USD, GBP_USD]
initial_capital: 50000
heartbeat: 100ms
data:
  kind: csv
  csv_dir: ./data
strategy:
  kind: mac
  short_window: 25
  long_window: 50
  lots: 2
execution:
  kind: simulated
journal:
  kind: sqlite
  db_path: ./run.db
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"EUR_USD", "GBP_USD"}, cfg.Symbols)
	assert.Equal(t, 50000.0, cfg.InitialCapital)
	assert.Equal(t, "sqlite", cfg.Journal.Kind)
	assert.Equal(t, 2.0, cfg.Strategy.Lots)

	hb, err := cfg.HeartbeatDuration()
	require.NoError(t, err)
	assert.Equal(t, "100ms", hb.String())
}

func TestLoadFromJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"symbols": ["EUR_USD"],
		"initial_capital": 100000,
		"data": {"kind": "csv", "csv_dir": "./data"},
		"strategy": {"kind": "noop", "lots": 1},
		"execution": {"kind": "simulated"},
		"journal": {"kind": "csv", "trades_file": "t.csv", "equity_file": "e.csv"}
	}`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "noop", cfg.Strategy.Kind)
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	base := func() *Config { return Default() }

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no symbols", func(c *Config) { c.Symbols = nil }},
		{"unknown instrument", func(c *Config) { c.Symbols = []string{"EUR_XYZ"} }},
		{"bad heartbeat", func(c *Config) { c.Heartbeat = "fast" }},
		{"unknown data kind", func(c *Config) { c.Data.Kind = "ftp" }},
		{"csv without dir", func(c *Config) { c.Data.CSVDir = "" }},
		{"oanda data without creds", func(c *Config) {
			c.Data.Kind = "oanda-poll"
			c.Data.Timeframe = "M15"
		}},
		{"bad timeframe", func(c *Config) {
			c.Data.Kind = "oanda-poll"
			c.Data.Timeframe = "M7"
			c.Oanda.Token = "x"
			c.Oanda.AccountID = "y"
		}},
		{"ws without url", func(c *Config) {
			c.Data.Kind = "ws"
			c.Data.Timeframe = "M1"
		}},
		{"unknown strategy", func(c *Config) { c.Strategy.Kind = "martingale" }},
		{"mac bad windows", func(c *Config) {
			c.Strategy.ShortWindow = 50
			c.Strategy.LongWindow = 25
		}},
		{"pinbar without pips", func(c *Config) { c.Strategy.Kind = "pinbar" }},
		{"zero lots", func(c *Config) { c.Strategy.Lots = 0 }},
		{"unknown execution", func(c *Config) { c.Execution.Kind = "paper" }},
		{"oanda execution without creds", func(c *Config) { c.Execution.Kind = "oanda" }},
		{"unknown journal", func(c *Config) { c.Journal.Kind = "parquet" }},
		{"csv journal without files", func(c *Config) { c.Journal.TradesFile = "" }},
		{"sqlite journal without path", func(c *Config) {
			c.Journal.Kind = "sqlite"
			c.Journal.DBPath = ""
		}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := base()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbols: [EUR_USD]\n"), 0o644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuildJournalAndLogger(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Default()
	cfg.Journal.TradesFile = filepath.Join(dir, "trades.csv")
	cfg.Journal.EquityFile = filepath.Join(dir, "equity.csv")

	j, err := cfg.BuildJournal()
	require.NoError(t, err)
	assert.NoError(t, j.Close())

	// No log file configured: the nop sink.
	log := cfg.BuildLogger()
	assert.NoError(t, log.Open())
	log.Write("ignored")
	assert.NoError(t, log.Close())
}
