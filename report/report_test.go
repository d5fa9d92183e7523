package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshal31718/enma-quant-trading-platform/backtest"
	"github.com/harshal31718/enma-quant-trading-platform/metrics"
)

func sampleResult() backtest.Result {
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	curve := []backtest.EquityPoint{
		{Time: t0, Equity: 10000},
		{Time: t0.Add(15 * time.Minute), Equity: 10100},
		{Time: t0.Add(30 * time.Minute), Equity: 10050},
	}
	return backtest.Result{
		RunID:       "01TESTRUN",
		EquityCurve: curve,
		Summary: backtest.Summary{
			InitialCapital: 10000,
			FinalEquity:    10050,
			MaxDrawdownPct: 0.495,
			FinalState:     backtest.StateEnabled,
			Symbols:        []string{"BTCUSDT"},
			TotalTrades:    2,
			Metrics: metrics.Summary{
				FinalEquity:    10050,
				ReturnPct:      0.5,
				MaxDrawdownPct: 0.495,
				Sharpe:         1.2,
				CAGRPct:        3.4,
			},
		},
	}
}

func TestWriteMetricsJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "metrics.json")
	require.NoError(t, WriteMetricsJSON(path, sampleResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		EquityMetrics struct {
			FinalEquity    float64 `json:"final_equity"`
			ReturnPct      float64 `json:"return_pct"`
			MaxDrawdownPct float64 `json:"max_drawdown_pct"`
		} `json:"equity_metrics"`
		RiskMetrics struct {
			Sharpe  float64 `json:"sharpe"`
			CAGRPct float64 `json:"cagr_pct"`
		} `json:"risk_metrics"`
		Summary struct {
			InitialCapital float64  `json:"initial_capital"`
			TradingState   string   `json:"trading_state"`
			Symbols        []string `json:"symbols"`
			TotalTrades    int      `json:"total_trades"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, 10050.0, doc.EquityMetrics.FinalEquity)
	assert.Equal(t, 0.5, doc.EquityMetrics.ReturnPct)
	assert.Equal(t, 1.2, doc.RiskMetrics.Sharpe)
	assert.Equal(t, 3.4, doc.RiskMetrics.CAGRPct)
	assert.Equal(t, "ENABLED", doc.Summary.TradingState)
	assert.Equal(t, []string{"BTCUSDT"}, doc.Summary.Symbols)
	assert.Equal(t, 2, doc.Summary.TotalTrades)
}

func TestWriteEquityChart(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "equity.html")
	require.NoError(t, WriteEquityChart(path, sampleResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "Equity Curve")
	assert.Contains(t, html, "01TESTRUN")
	assert.Contains(t, html, "2025-03-01T00:15:00Z")
}
