// Package execution prices single fills. Both operations are pure
// functions of their inputs; slippage is a fixed fraction of the candle's
// high-low range and always moves the price against the trader.
package execution

import "errors"

// ErrInsufficientFunds is the expected refusal when cash cannot cover the
// position's notional plus the entry fee. The caller must release any risk
// allocation it reserved before attempting the open.
var ErrInsufficientFunds = errors.New("execution: insufficient funds")

// rangeEpsilon guards against degenerate candles (high == low) silently
// producing zero slippage.
const rangeEpsilon = 1e-8

// OpenFill is the result of a priced entry.
type OpenFill struct {
	Cash     float64 // cash remaining after notional + fee
	Quantity float64
	Price    float64 // slippage-adjusted entry price
	Notional float64 // equity * riskFraction
	Fee      float64
}

// Open prices a long entry at the candle close plus adverse slippage.
// The notional is sized from current equity and the granted risk fraction.
func Open(cash, equity, close, candleRange, riskFraction, feeRate, slippageFraction float64) (OpenFill, error) {
	if candleRange < rangeEpsilon {
		candleRange = rangeEpsilon
	}
	entryPrice := close + candleRange*slippageFraction
	notional := equity * riskFraction
	fee := notional * feeRate

	if cash < notional+fee {
		return OpenFill{}, ErrInsufficientFunds
	}

	return OpenFill{
		Cash:     cash - notional - fee,
		Quantity: notional / entryPrice,
		Price:    entryPrice,
		Notional: notional,
		Fee:      fee,
	}, nil
}

// CloseFill is the result of a priced exit.
type CloseFill struct {
	Cash  float64 // cash after proceeds minus fee
	Price float64 // slippage-adjusted exit price
	Value float64 // quantity * exit price
	Fee   float64
}

// Close prices a full exit at the candle close minus adverse slippage.
// Closing never requires available cash, so it cannot fail.
func Close(cash, quantity, close, candleRange, feeRate, slippageFraction float64) CloseFill {
	if candleRange < rangeEpsilon {
		candleRange = rangeEpsilon
	}
	exitPrice := close - candleRange*slippageFraction
	value := quantity * exitPrice
	fee := value * feeRate

	return CloseFill{
		Cash:  cash + value - fee,
		Price: exitPrice,
		Value: value,
		Fee:   fee,
	}
}
