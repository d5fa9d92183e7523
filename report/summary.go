package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/harshal31718/enma-quant-trading-platform/backtest"
)

// metricsDoc is the metrics.json layout consumed by downstream analysis.
type metricsDoc struct {
	EquityMetrics equityMetrics    `json:"equity_metrics"`
	RiskMetrics   riskMetrics      `json:"risk_metrics"`
	Summary       backtest.Summary `json:"summary"`
}

type equityMetrics struct {
	FinalEquity    float64 `json:"final_equity"`
	ReturnPct      float64 `json:"return_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
}

type riskMetrics struct {
	Sharpe  float64 `json:"sharpe"`
	CAGRPct float64 `json:"cagr_pct"`
}

// WriteMetricsJSON writes the summary record plus the computed metrics to
// path as indented JSON.
func WriteMetricsJSON(path string, result backtest.Result) error {
	m := result.Summary.Metrics
	doc := metricsDoc{
		EquityMetrics: equityMetrics{
			FinalEquity:    m.FinalEquity,
			ReturnPct:      m.ReturnPct,
			MaxDrawdownPct: m.MaxDrawdownPct,
		},
		RiskMetrics: riskMetrics{
			Sharpe:  m.Sharpe,
			CAGRPct: m.CAGRPct,
		},
		Summary: result.Summary,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal metrics: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
