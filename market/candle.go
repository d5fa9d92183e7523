package market

import "time"

// RangeEpsilon floors a candle's high-low range so a degenerate bar
// (high == low) still produces adverse slippage instead of a free fill.
const RangeEpsilon = 1e-8

// Candle represents one OHLC (Open, High, Low, Close) bar for a symbol.
// Candles are immutable once loaded.
type Candle struct {
	Symbol string
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Range returns the epsilon-floored high-low span of the candle.
func (c Candle) Range() float64 {
	r := c.High - c.Low
	if r < RangeEpsilon {
		return RangeEpsilon
	}
	return r
}
