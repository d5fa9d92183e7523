package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxDrawdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		equity []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"monotonic up", []float64{100, 110, 120}, 0},
		{"single dip", []float64{100, 80, 120}, 0.20},
		{"deepest after new peak", []float64{100, 90, 120, 60}, 0.50},
		{"flat", []float64{100, 100, 100}, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, MaxDrawdown(tt.equity), 1e-12)
		})
	}
}

func TestSharpe(t *testing.T) {
	t.Parallel()

	// too short or no variance yields zero
	assert.Zero(t, Sharpe([]float64{100}, 365))
	assert.Zero(t, Sharpe([]float64{100, 110}, 365))
	assert.Zero(t, Sharpe([]float64{100, 100, 100}, 365))

	// returns: +0.10, -0.10; mean 0, annualized still 0
	assert.Zero(t, Sharpe([]float64{100, 110, 99}, 365))

	// returns: 0.10, 0.20 -> mean 0.15, sample std ~0.0707
	got := Sharpe([]float64{100, 110, 132}, 365)
	mean, std := 0.15, math.Sqrt(0.005)/1 // variance = ((0.05)^2+(0.05)^2)/1
	assert.InDelta(t, mean/std*math.Sqrt(365), got, 1e-9)
	assert.Greater(t, got, 0.0)
}

func TestCAGR(t *testing.T) {
	t.Parallel()

	// doubles over exactly one year of periods
	got := CAGR(make365(100, 200), 365)
	assert.InDelta(t, 100.0, got, 1.0)

	assert.Zero(t, CAGR(nil, 365))
	assert.Zero(t, CAGR([]float64{0, 100}, 365))
}

// make365 builds a 365-point geometric path from start to end.
func make365(start, end float64) []float64 {
	n := 365
	out := make([]float64, n)
	ratio := math.Pow(end/start, 1/float64(n-1))
	out[0] = start
	for i := 1; i < n; i++ {
		out[i] = out[i-1] * ratio
	}
	return out
}

func TestComputeSummary(t *testing.T) {
	t.Parallel()

	s := Compute([]float64{10000, 11000, 9900}, 4*24*365)
	assert.InDelta(t, 9900.0, s.FinalEquity, 1e-9)
	assert.InDelta(t, -1.0, s.ReturnPct, 1e-9)
	assert.InDelta(t, 10.0, s.MaxDrawdownPct, 1e-9)

	assert.Equal(t, Summary{}, Compute(nil, 365))
}
