package backtest

import (
	"fmt"

	"github.com/harshal31718/enma-quant-trading-platform/risk"
)

// SymbolConfig declares one tradable symbol. Slice order is significant:
// it fixes the priority in which symbols compete for a shrinking risk
// budget within a step.
type SymbolConfig struct {
	Symbol       string
	RiskFraction float64 // target risk fraction requested per entry
}

// Config carries the portfolio-level run parameters.
type Config struct {
	InitialCapital   float64
	FeeRate          float64
	SlippageFraction float64 // fraction of the candle range, adverse
	MaxDrawdown      float64 // ENABLED -> COOLDOWN trigger
	CooldownCandles  int
	PeriodsPerYear   float64 // annualization for Sharpe/CAGR
	Symbols          []SymbolConfig
	Budget           risk.BudgetConfig
}

// Validate rejects configurations the engine cannot run. Cap validation
// beyond these checks happens in risk.NewBudget.
func (c Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("backtest: initial capital must be positive, got %v", c.InitialCapital)
	}
	if c.FeeRate < 0 {
		return fmt.Errorf("backtest: fee rate must be non-negative, got %v", c.FeeRate)
	}
	if c.SlippageFraction < 0 {
		return fmt.Errorf("backtest: slippage fraction must be non-negative, got %v", c.SlippageFraction)
	}
	if c.MaxDrawdown <= 0 || c.MaxDrawdown > 1 {
		return fmt.Errorf("backtest: max drawdown %v outside (0, 1]", c.MaxDrawdown)
	}
	if c.CooldownCandles <= 0 {
		return fmt.Errorf("backtest: cooldown candles must be positive, got %d", c.CooldownCandles)
	}
	if c.PeriodsPerYear <= 0 {
		return fmt.Errorf("backtest: periods per year must be positive, got %v", c.PeriodsPerYear)
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("backtest: at least one symbol is required")
	}
	seen := make(map[string]bool, len(c.Symbols))
	for _, sc := range c.Symbols {
		if sc.Symbol == "" {
			return fmt.Errorf("backtest: symbol name is required")
		}
		if seen[sc.Symbol] {
			return fmt.Errorf("backtest: duplicate symbol %s", sc.Symbol)
		}
		seen[sc.Symbol] = true
		if sc.RiskFraction <= 0 || sc.RiskFraction > 1 {
			return fmt.Errorf("backtest: %s risk fraction %v outside (0, 1]", sc.Symbol, sc.RiskFraction)
		}
	}
	return nil
}
