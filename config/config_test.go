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

func TestLoadFromFileYAML(t *testing.T) {
	t.Parallel()

	yamlCfg := `
portfolio:
  initial_capital: 10000
  fee_rate: 0.0004
  slippage_fraction: 0.10
  max_risk_fraction: 0.40
  max_notional_fraction: 0.80
  max_drawdown_fraction: 0.30
  cooldown_candles: 15
  periods_per_year: 35040
symbols:
  - symbol: BTCUSDT
    risk_fraction: 0.15
    max_risk: 0.30
    file: data/BTCUSDT_15m.csv
  - symbol: ETHUSDT
    risk_fraction: 0.10
    max_risk: 0.20
buckets:
  - name: MAJORS
    symbols: [BTCUSDT, ETHUSDT]
    max_risk: 0.30
signals:
  mode: random
  seed: 42
journal:
  type: csv
  trades_file: trades.csv
  equity_file: equity.csv
output:
  dir: results
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlCfg), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, cfg.Portfolio.InitialCapital)
	require.Len(t, cfg.Symbols, 2)
	assert.Equal(t, "BTCUSDT", cfg.Symbols[0].Symbol)
	assert.Equal(t, int64(42), cfg.Signals.Seed)
	require.Len(t, cfg.Buckets, 1)
	assert.Equal(t, "MAJORS", cfg.Buckets[0].Name)
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	t.Parallel()

	for _, ext := range []string{"config.yaml", "config.json"} {
		path := filepath.Join(t.TempDir(), ext)
		orig := Default()
		require.NoError(t, orig.SaveToFile(path))

		got, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, orig, got)
	}
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capital", func(c *Config) { c.Portfolio.InitialCapital = 0 }},
		{"negative fee", func(c *Config) { c.Portfolio.FeeRate = -0.1 }},
		{"risk cap above one", func(c *Config) { c.Portfolio.MaxRiskFraction = 1.5 }},
		{"zero cooldown", func(c *Config) { c.Portfolio.CooldownCandles = 0 }},
		{"no symbols", func(c *Config) { c.Symbols = nil }},
		{"duplicate symbol", func(c *Config) { c.Symbols = append(c.Symbols, c.Symbols[0]) }},
		{"bad risk fraction", func(c *Config) { c.Symbols[0].RiskFraction = 0 }},
		{"bucket unknown symbol", func(c *Config) { c.Buckets[0].Symbols = []string{"XRPUSDT"} }},
		{"bad signal mode", func(c *Config) { c.Signals.Mode = "oracle" }},
		{"http without url", func(c *Config) { c.Signals.Mode = "http"; c.Signals.URL = "" }},
		{"bad journal type", func(c *Config) { c.Journal.Type = "parquet" }},
		{"csv journal missing files", func(c *Config) { c.Journal.TradesFile = "" }},
		{"sqlite journal missing path", func(c *Config) { c.Journal.Type = "sqlite"; c.Journal.DBPath = "" }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestBacktestConversion(t *testing.T) {
	t.Parallel()

	bc := Default().Backtest()
	require.NoError(t, bc.Validate())

	assert.Equal(t, 10000.0, bc.InitialCapital)
	assert.Equal(t, 0.40, bc.Budget.PortfolioMaxRisk)
	assert.Equal(t, 0.80, bc.Budget.PortfolioMaxNotional)
	assert.Equal(t, 0.30, bc.Budget.SymbolMaxRisk["BTCUSDT"])

	require.Len(t, bc.Symbols, 3)
	assert.Equal(t, "BTCUSDT", bc.Symbols[0].Symbol)
	assert.Equal(t, 0.15, bc.Symbols[0].RiskFraction)

	majors, ok := bc.Budget.Buckets["MAJORS"]
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"BTCUSDT", "ETHUSDT"}, majors.Symbols)
	assert.Equal(t, 0.30, majors.MaxRisk)
}
