// Package signal defines the directional signal contract the backtest
// engine consumes. Providers classify every (symbol, timestamp) pair as
// LONG or FLAT; anything a richer model emits (SHORT, HOLD, confidence)
// is collapsed to FLAT at this boundary.
package signal

import "time"

// Direction is a per-candle trading classification.
type Direction string

const (
	Long Direction = "LONG"
	Flat Direction = "FLAT"
)

// Provider yields the signal for a symbol at a timestamp. Implementations
// must be deterministic for a given construction (seed, log, remote run)
// so two backtest runs over the same data produce identical ledgers.
type Provider interface {
	Signal(symbol string, ts time.Time) (Direction, error)
}
