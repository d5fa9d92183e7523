// Package report renders run artifacts for human consumption: an equity
// curve chart and the metrics.json summary.
package report

import (
	"fmt"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/harshal31718/enma-quant-trading-platform/backtest"
)

// WriteEquityChart renders the equity trajectory as a standalone HTML
// page at path.
func WriteEquityChart(path string, result backtest.Result) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Equity Curve",
			Width:     "1200px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Equity Curve",
			Subtitle: fmt.Sprintf("run %s", result.RunID),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	xs := make([]string, len(result.EquityCurve))
	ys := make([]opts.LineData, len(result.EquityCurve))
	for i, p := range result.EquityCurve {
		xs[i] = p.Time.UTC().Format(time.RFC3339)
		ys[i] = opts.LineData{Value: p.Equity}
	}
	line.SetXAxis(xs).AddSeries("equity", ys).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create chart: %w", err)
	}
	defer f.Close()
	return line.Render(f)
}
