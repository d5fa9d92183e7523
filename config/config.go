package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harshal31718/enma-quant-trading-platform/backtest"
	"github.com/harshal31718/enma-quant-trading-platform/risk"
)

// Config represents the complete backtest run configuration
type Config struct {
	Portfolio PortfolioConfig `json:"portfolio" yaml:"portfolio"`
	Symbols   []SymbolConfig  `json:"symbols" yaml:"symbols"`
	Buckets   []BucketConfig  `json:"buckets,omitempty" yaml:"buckets,omitempty"`
	Signals   SignalsConfig   `json:"signals" yaml:"signals"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Output    OutputConfig    `json:"output" yaml:"output"`
}

// PortfolioConfig contains portfolio-level run parameters
type PortfolioConfig struct {
	InitialCapital      float64 `json:"initial_capital" yaml:"initial_capital"`
	FeeRate             float64 `json:"fee_rate" yaml:"fee_rate"`
	SlippageFraction    float64 `json:"slippage_fraction" yaml:"slippage_fraction"`
	MaxRiskFraction     float64 `json:"max_risk_fraction" yaml:"max_risk_fraction"`
	MaxNotionalFraction float64 `json:"max_notional_fraction" yaml:"max_notional_fraction"`
	MaxDrawdownFraction float64 `json:"max_drawdown_fraction" yaml:"max_drawdown_fraction"`
	CooldownCandles     int     `json:"cooldown_candles" yaml:"cooldown_candles"`
	PeriodsPerYear      float64 `json:"periods_per_year" yaml:"periods_per_year"`
}

// SymbolConfig contains per-symbol parameters. List order fixes entry
// priority when symbols compete for remaining risk.
type SymbolConfig struct {
	Symbol       string  `json:"symbol" yaml:"symbol"`
	RiskFraction float64 `json:"risk_fraction" yaml:"risk_fraction"`
	MaxRisk      float64 `json:"max_risk,omitempty" yaml:"max_risk,omitempty"`
	File         string  `json:"file,omitempty" yaml:"file,omitempty"`
}

// BucketConfig groups symbols under an aggregate risk cap
type BucketConfig struct {
	Name    string   `json:"name" yaml:"name"`
	Symbols []string `json:"symbols" yaml:"symbols"`
	MaxRisk float64  `json:"max_risk" yaml:"max_risk"`
}

// SignalsConfig selects the signal source
type SignalsConfig struct {
	Mode string `json:"mode" yaml:"mode"` // "random" or "http"
	Seed int64  `json:"seed,omitempty" yaml:"seed,omitempty"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// OutputConfig contains report output parameters
type OutputConfig struct {
	Dir string `json:"dir" yaml:"dir"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Portfolio.InitialCapital <= 0 {
		return fmt.Errorf("portfolio.initial_capital must be positive")
	}
	if c.Portfolio.FeeRate < 0 {
		return fmt.Errorf("portfolio.fee_rate must be non-negative")
	}
	if c.Portfolio.SlippageFraction < 0 {
		return fmt.Errorf("portfolio.slippage_fraction must be non-negative")
	}
	if c.Portfolio.MaxRiskFraction <= 0 || c.Portfolio.MaxRiskFraction > 1 {
		return fmt.Errorf("portfolio.max_risk_fraction must be between 0 and 1")
	}
	if c.Portfolio.MaxNotionalFraction <= 0 || c.Portfolio.MaxNotionalFraction > 1 {
		return fmt.Errorf("portfolio.max_notional_fraction must be between 0 and 1")
	}
	if c.Portfolio.MaxDrawdownFraction <= 0 || c.Portfolio.MaxDrawdownFraction > 1 {
		return fmt.Errorf("portfolio.max_drawdown_fraction must be between 0 and 1")
	}
	if c.Portfolio.CooldownCandles <= 0 {
		return fmt.Errorf("portfolio.cooldown_candles must be positive")
	}
	if c.Portfolio.PeriodsPerYear <= 0 {
		return fmt.Errorf("portfolio.periods_per_year must be positive")
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	seen := make(map[string]bool, len(c.Symbols))
	for _, s := range c.Symbols {
		if s.Symbol == "" {
			return fmt.Errorf("symbol name is required")
		}
		if seen[s.Symbol] {
			return fmt.Errorf("duplicate symbol: %s", s.Symbol)
		}
		seen[s.Symbol] = true
		if s.RiskFraction <= 0 || s.RiskFraction > 1 {
			return fmt.Errorf("symbol %s risk_fraction must be between 0 and 1", s.Symbol)
		}
		if s.MaxRisk < 0 || s.MaxRisk > 1 {
			return fmt.Errorf("symbol %s max_risk must be between 0 and 1", s.Symbol)
		}
	}
	bucketSeen := make(map[string]bool, len(c.Buckets))
	for _, b := range c.Buckets {
		if b.Name == "" {
			return fmt.Errorf("bucket name is required")
		}
		if bucketSeen[b.Name] {
			return fmt.Errorf("duplicate bucket: %s", b.Name)
		}
		bucketSeen[b.Name] = true
		if len(b.Symbols) == 0 {
			return fmt.Errorf("bucket %s has no symbols", b.Name)
		}
		for _, sym := range b.Symbols {
			if !seen[sym] {
				return fmt.Errorf("bucket %s references unknown symbol %s", b.Name, sym)
			}
		}
		if b.MaxRisk <= 0 || b.MaxRisk > 1 {
			return fmt.Errorf("bucket %s max_risk must be between 0 and 1", b.Name)
		}
	}
	if c.Signals.Mode != "random" && c.Signals.Mode != "http" {
		return fmt.Errorf("signals.mode must be 'random' or 'http'")
	}
	if c.Signals.Mode == "http" && c.Signals.URL == "" {
		return fmt.Errorf("signals.url required for http mode")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Backtest converts the file configuration into the engine's run config.
func (c *Config) Backtest() backtest.Config {
	symbols := make([]backtest.SymbolConfig, len(c.Symbols))
	symbolCaps := make(map[string]float64)
	for i, s := range c.Symbols {
		symbols[i] = backtest.SymbolConfig{
			Symbol:       s.Symbol,
			RiskFraction: s.RiskFraction,
		}
		if s.MaxRisk > 0 {
			symbolCaps[s.Symbol] = s.MaxRisk
		}
	}
	buckets := make(map[string]risk.Bucket, len(c.Buckets))
	for _, b := range c.Buckets {
		buckets[b.Name] = risk.Bucket{Symbols: b.Symbols, MaxRisk: b.MaxRisk}
	}
	return backtest.Config{
		InitialCapital:   c.Portfolio.InitialCapital,
		FeeRate:          c.Portfolio.FeeRate,
		SlippageFraction: c.Portfolio.SlippageFraction,
		MaxDrawdown:      c.Portfolio.MaxDrawdownFraction,
		CooldownCandles:  c.Portfolio.CooldownCandles,
		PeriodsPerYear:   c.Portfolio.PeriodsPerYear,
		Symbols:          symbols,
		Budget: risk.BudgetConfig{
			PortfolioMaxRisk:     c.Portfolio.MaxRiskFraction,
			PortfolioMaxNotional: c.Portfolio.MaxNotionalFraction,
			SymbolMaxRisk:        symbolCaps,
			Buckets:              buckets,
		},
	}
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Portfolio: PortfolioConfig{
			InitialCapital:      10000,
			FeeRate:             0.0004,
			SlippageFraction:    0.10,
			MaxRiskFraction:     0.40,
			MaxNotionalFraction: 0.80,
			MaxDrawdownFraction: 0.30,
			CooldownCandles:     15,
			PeriodsPerYear:      4 * 24 * 365, // 15m candles
		},
		Symbols: []SymbolConfig{
			{Symbol: "BTCUSDT", RiskFraction: 0.15, MaxRisk: 0.30, File: "data/BTCUSDT_15m.csv"},
			{Symbol: "ETHUSDT", RiskFraction: 0.10, MaxRisk: 0.20, File: "data/ETHUSDT_15m.csv"},
			{Symbol: "BNBUSDT", RiskFraction: 0.05, MaxRisk: 0.20, File: "data/BNBUSDT_15m.csv"},
		},
		Buckets: []BucketConfig{
			{Name: "MAJORS", Symbols: []string{"BTCUSDT", "ETHUSDT"}, MaxRisk: 0.30},
			{Name: "ALTS", Symbols: []string{"BNBUSDT"}, MaxRisk: 0.20},
		},
		Signals: SignalsConfig{
			Mode: "random",
			Seed: 42,
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
		Output: OutputConfig{
			Dir: "./results",
		},
	}
}
