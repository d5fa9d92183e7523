// Package journal persists backtest output: closed trades, the equity
// curve, and per-run summaries. Backends share the Journal interface so
// the engine does not care where records land.
package journal

import "time"

// TradeRecord mirrors a finalized ledger trade, tagged with its run.
type TradeRecord struct {
	RunID      string
	Symbol     string
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	Quantity   float64
	PnL        float64
	PnLPct     float64
	Reason     string
}

// EquityRecord is one point of the equity curve.
type EquityRecord struct {
	RunID  string
	Time   time.Time
	Equity float64
}

// RunRecord summarizes a completed run.
type RunRecord struct {
	RunID          string
	Created        time.Time
	InitialCapital float64
	FinalEquity    float64
	ReturnPct      float64
	MaxDrawdownPct float64
	Sharpe         float64
	CAGRPct        float64
	UsedRiskPct    float64
	FinalState     string
	Symbols        []string
	Trades         int
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquityRecord) error
	RecordRun(RunRecord) error
	Close() error
}
