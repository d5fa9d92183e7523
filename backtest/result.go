package backtest

import (
	"time"

	"github.com/harshal31718/enma-quant-trading-platform/ledger"
	"github.com/harshal31718/enma-quant-trading-platform/metrics"
)

// State is the global risk-control state of the run.
type State string

const (
	StateEnabled  State = "ENABLED"
	StateCooldown State = "COOLDOWN"
)

// EquityPoint is one sample of the equity trajectory, appended exactly
// once per processed timestamp.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// Summary is the end-of-run record handed to collaborators.
type Summary struct {
	InitialCapital float64         `json:"initial_capital"`
	FinalEquity    float64         `json:"final_equity"`
	MaxDrawdownPct float64         `json:"max_drawdown_pct"`
	UsedRiskPct    float64         `json:"used_risk_pct"`
	FinalState     State           `json:"trading_state"`
	Symbols        []string        `json:"symbols"`
	TotalTrades    int             `json:"total_trades"`
	Metrics        metrics.Summary `json:"-"`
}

// Result is everything a completed run produced.
type Result struct {
	RunID       string
	EquityCurve []EquityPoint
	Trades      []ledger.Trade
	Summary     Summary
}

// EquityValues flattens the curve for the metrics reporter.
func (r Result) EquityValues() []float64 {
	vals := make([]float64, len(r.EquityCurve))
	for i, p := range r.EquityCurve {
		vals[i] = p.Equity
	}
	return vals
}
