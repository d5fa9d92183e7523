// Package metrics computes summary risk/return statistics from a
// finished equity sequence. The backtest engine guarantees the sequence
// is complete, ordered, and gap-free before handing it off.
package metrics

import "math"

// Summary bundles the headline statistics of a run.
type Summary struct {
	FinalEquity    float64 `json:"final_equity"`
	ReturnPct      float64 `json:"return_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	Sharpe         float64 `json:"sharpe"`
	CAGRPct        float64 `json:"cagr_pct"`
}

// Compute derives the summary from an ordered equity sequence.
// periodsPerYear annualizes Sharpe and CAGR (e.g. 15m candles: 4*24*365).
func Compute(equity []float64, periodsPerYear float64) Summary {
	if len(equity) == 0 {
		return Summary{}
	}
	s := Summary{
		FinalEquity:    equity[len(equity)-1],
		MaxDrawdownPct: MaxDrawdown(equity) * 100,
	}
	if equity[0] != 0 {
		s.ReturnPct = (s.FinalEquity/equity[0] - 1) * 100
	}
	s.Sharpe = Sharpe(equity, periodsPerYear)
	s.CAGRPct = CAGR(equity, periodsPerYear)
	return s
}

// MaxDrawdown returns the largest peak-to-trough fraction over the
// sequence, tracked against the running maximum.
func MaxDrawdown(equity []float64) float64 {
	var peak, maxDD float64
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			if dd := (peak - e) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// Sharpe annualizes mean/std of per-period returns. Uses the sample
// standard deviation. Zero when the series is too short or has no
// variance.
func Sharpe(equity []float64, periodsPerYear float64) float64 {
	returns := periodReturns(equity)
	if len(returns) < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)
	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(periodsPerYear)
}

// CAGR returns the compound annual growth rate in percent, with the
// series length measured in periods.
func CAGR(equity []float64, periodsPerYear float64) float64 {
	if len(equity) == 0 || periodsPerYear <= 0 || equity[0] <= 0 {
		return 0
	}
	years := float64(len(equity)) / periodsPerYear
	if years <= 0 {
		return 0
	}
	total := equity[len(equity)-1] / equity[0]
	if total <= 0 {
		return 0
	}
	return (math.Pow(total, 1/years) - 1) * 100
}

func periodReturns(equity []float64) []float64 {
	var returns []float64
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			continue
		}
		returns = append(returns, equity[i]/equity[i-1]-1)
	}
	return returns
}
