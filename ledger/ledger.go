// Package ledger owns per-symbol open-position state and the immutable
// record of closed trades. The simulator reads and writes positions only
// through these operations.
package ledger

import (
	"errors"
	"time"
)

// ErrAlreadyOpen is the expected refusal when a symbol already has an
// open position; at most one position per symbol may be open at a time.
var ErrAlreadyOpen = errors.New("ledger: position already open")

// Close reasons recorded on finalized trades.
const (
	ReasonSignal      = "signal"
	ReasonLiquidation = "liquidation"
)

// Position is one open lot. The risk fraction and notional captured at
// entry are exactly what must be released back to the risk budget when
// the position closes.
type Position struct {
	Symbol       string
	Quantity     float64
	EntryPrice   float64
	EntryTime    time.Time
	RiskFraction float64
	Notional     float64
}

// Trade is a finalized round trip. Immutable once appended.
type Trade struct {
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

// Ledger tracks open positions and archives closed trades.
type Ledger struct {
	open   map[string]Position
	closed []Trade
}

func New() *Ledger {
	return &Ledger{open: make(map[string]Position)}
}

// Open creates a position and its open-trade record. Fails with
// ErrAlreadyOpen if the symbol already has one.
func (l *Ledger) Open(symbol string, t time.Time, price, quantity, riskFraction, notional float64) error {
	if _, exists := l.open[symbol]; exists {
		return ErrAlreadyOpen
	}
	l.open[symbol] = Position{
		Symbol:       symbol,
		Quantity:     quantity,
		EntryPrice:   price,
		EntryTime:    t,
		RiskFraction: riskFraction,
		Notional:     notional,
	}
	return nil
}

// Close finalizes and archives the symbol's position at the given exit
// price. Closing a flat symbol is a no-op returning ok=false; it must not
// corrupt state, but callers should not rely on it.
func (l *Ledger) Close(symbol string, t time.Time, price float64, reason string) (Trade, bool) {
	pos, exists := l.open[symbol]
	if !exists {
		return Trade{}, false
	}
	delete(l.open, symbol)

	trade := Trade{
		Symbol:     symbol,
		EntryTime:  pos.EntryTime,
		ExitTime:   t,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  price,
		Quantity:   pos.Quantity,
		PnL:        (price - pos.EntryPrice) * pos.Quantity,
		PnLPct:     (price/pos.EntryPrice - 1) * 100,
		Reason:     reason,
	}
	l.closed = append(l.closed, trade)
	return trade, true
}

// Position returns the open position for a symbol, if any.
func (l *Ledger) Position(symbol string) (Position, bool) {
	pos, ok := l.open[symbol]
	return pos, ok
}

// OpenCount reports how many positions are currently open.
func (l *Ledger) OpenCount() int { return len(l.open) }

// Closed returns the archive of finalized trades in close order.
func (l *Ledger) Closed() []Trade { return l.closed }
