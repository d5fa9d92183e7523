package signal

import "time"

// ReplayProvider serves signals from a fixed log, keyed by symbol and
// timestamp. Unknown pairs are FLAT, so replaying a partial log never
// invents entries. Useful for regression runs and tests.
type ReplayProvider struct {
	signals map[string]map[int64]Direction
}

func NewReplay() *ReplayProvider {
	return &ReplayProvider{signals: make(map[string]map[int64]Direction)}
}

// Set records the signal for one (symbol, timestamp) pair.
func (p *ReplayProvider) Set(symbol string, ts time.Time, d Direction) {
	m, ok := p.signals[symbol]
	if !ok {
		m = make(map[int64]Direction)
		p.signals[symbol] = m
	}
	m[ts.UnixMilli()] = d
}

func (p *ReplayProvider) Signal(symbol string, ts time.Time) (Direction, error) {
	if d, ok := p.signals[symbol][ts.UnixMilli()]; ok {
		return d, nil
	}
	return Flat, nil
}
