// Package risk implements admission control over capital deployment. A
// Budget tracks hierarchical capacity counters — portfolio, per-symbol,
// bucket, and notional — and grants at most the tightest remaining room
// across all applicable axes, so the portfolio can never exceed its
// declared risk appetite along any of them.
package risk

import (
	"fmt"
	"math"
)

// capEpsilon tolerates float accumulation when verifying invariants.
const capEpsilon = 1e-9

// Bucket groups symbols under an aggregate risk cap tighter than the sum
// of their individual symbol caps (e.g. a "MAJORS" bucket for correlated
// assets).
type Bucket struct {
	Symbols []string
	MaxRisk float64
}

// BudgetConfig declares the capacity tree.
type BudgetConfig struct {
	// PortfolioMaxRisk caps the sum of all allocated risk fractions.
	PortfolioMaxRisk float64
	// PortfolioMaxNotional caps deployed notional as a fraction of
	// current equity.
	PortfolioMaxNotional float64
	// SymbolMaxRisk caps individual symbols; unset symbols default to
	// the portfolio cap.
	SymbolMaxRisk map[string]float64
	// Buckets caps symbol groups; unbucketed symbols default to the
	// portfolio cap.
	Buckets map[string]Bucket
}

// Budget owns the mutable capacity counters. It is not safe for
// concurrent use; the simulation is strictly sequential.
type Budget struct {
	portfolioCap float64
	notionalCap  float64
	symbolCaps   map[string]float64
	bucketCaps   map[string]float64
	bucketOf     map[string]string

	portfolioUsed float64
	notionalUsed  float64
	symbolUsed    map[string]float64
	bucketUsed    map[string]float64
}

// NewBudget validates the config and returns a zero-usage budget.
func NewBudget(cfg BudgetConfig) (*Budget, error) {
	if cfg.PortfolioMaxRisk <= 0 || cfg.PortfolioMaxRisk > 1 {
		return nil, fmt.Errorf("risk: portfolio max risk %v outside (0, 1]", cfg.PortfolioMaxRisk)
	}
	if cfg.PortfolioMaxNotional <= 0 || cfg.PortfolioMaxNotional > 1 {
		return nil, fmt.Errorf("risk: portfolio max notional %v outside (0, 1]", cfg.PortfolioMaxNotional)
	}

	b := &Budget{
		portfolioCap: cfg.PortfolioMaxRisk,
		notionalCap:  cfg.PortfolioMaxNotional,
		symbolCaps:   make(map[string]float64, len(cfg.SymbolMaxRisk)),
		bucketCaps:   make(map[string]float64, len(cfg.Buckets)),
		bucketOf:     make(map[string]string),
		symbolUsed:   make(map[string]float64),
		bucketUsed:   make(map[string]float64),
	}
	for sym, cap := range cfg.SymbolMaxRisk {
		if cap < 0 || cap > 1 {
			return nil, fmt.Errorf("risk: symbol cap %s=%v outside [0, 1]", sym, cap)
		}
		b.symbolCaps[sym] = cap
	}
	for name, bucket := range cfg.Buckets {
		if bucket.MaxRisk < 0 || bucket.MaxRisk > 1 {
			return nil, fmt.Errorf("risk: bucket cap %s=%v outside [0, 1]", name, bucket.MaxRisk)
		}
		b.bucketCaps[name] = bucket.MaxRisk
		for _, sym := range bucket.Symbols {
			if prev, dup := b.bucketOf[sym]; dup {
				return nil, fmt.Errorf("risk: symbol %s in buckets %s and %s", sym, prev, name)
			}
			b.bucketOf[sym] = name
		}
	}
	return b, nil
}

// Allocate grants at most requested risk for the symbol, bounded by the
// remaining room on every applicable axis. All rooms are computed before
// anything is committed, so a grant reserves the full amount on every
// axis or nothing at all. Returns 0 with no side effects when any axis is
// exhausted.
func (b *Budget) Allocate(symbol string, requested, equity float64) float64 {
	if requested <= 0 || equity <= 0 {
		return 0
	}

	granted := math.Min(requested, b.portfolioCap-b.portfolioUsed)
	granted = math.Min(granted, b.symbolRoom(symbol))
	granted = math.Min(granted, b.bucketRoom(symbol))
	if granted <= 0 {
		return 0
	}

	notionalRoom := b.notionalCap*equity - b.notionalUsed
	if notionalRoom <= 0 {
		return 0
	}
	if equity*granted > notionalRoom {
		granted = notionalRoom / equity
	}

	b.portfolioUsed += granted
	b.symbolUsed[symbol] += granted
	if bucket, ok := b.bucketOf[symbol]; ok {
		b.bucketUsed[bucket] += granted
	}
	b.notionalUsed += equity * granted
	return granted
}

// Release returns a previously granted (riskFraction, notional) pair to
// the budget. Counters floor at zero as a guard against double release,
// but callers must still release exactly once per open position.
func (b *Budget) Release(symbol string, riskFraction, notional float64) {
	b.portfolioUsed = math.Max(b.portfolioUsed-riskFraction, 0)
	b.symbolUsed[symbol] = math.Max(b.symbolUsed[symbol]-riskFraction, 0)
	if bucket, ok := b.bucketOf[symbol]; ok {
		b.bucketUsed[bucket] = math.Max(b.bucketUsed[bucket]-riskFraction, 0)
	}
	b.notionalUsed = math.Max(b.notionalUsed-notional, 0)
}

// RemainingRisk reports the unallocated portfolio-level risk fraction.
func (b *Budget) RemainingRisk() float64 {
	return math.Max(b.portfolioCap-b.portfolioUsed, 0)
}

// UsedRisk reports the currently allocated portfolio-level risk fraction.
func (b *Budget) UsedRisk() float64 { return b.portfolioUsed }

// UsedNotional reports the currently reserved notional.
func (b *Budget) UsedNotional() float64 { return b.notionalUsed }

func (b *Budget) symbolRoom(symbol string) float64 {
	cap, ok := b.symbolCaps[symbol]
	if !ok {
		cap = b.portfolioCap
	}
	return cap - b.symbolUsed[symbol]
}

func (b *Budget) bucketRoom(symbol string) float64 {
	bucket, ok := b.bucketOf[symbol]
	if !ok {
		return b.portfolioCap - b.portfolioUsed
	}
	return b.bucketCaps[bucket] - b.bucketUsed[bucket]
}

// Check verifies the accounting invariants. A violation means a defect in
// allocate/release logic, never a data problem, so callers should treat a
// non-nil result as fatal rather than clamping it away.
func (b *Budget) Check() error {
	if b.portfolioUsed < -capEpsilon || b.portfolioUsed > b.portfolioCap+capEpsilon {
		return fmt.Errorf("risk: portfolio used %v outside [0, %v]", b.portfolioUsed, b.portfolioCap)
	}
	if b.notionalUsed < -capEpsilon {
		return fmt.Errorf("risk: notional used %v is negative", b.notionalUsed)
	}
	for sym, used := range b.symbolUsed {
		cap, ok := b.symbolCaps[sym]
		if !ok {
			cap = b.portfolioCap
		}
		if used < -capEpsilon || used > cap+capEpsilon {
			return fmt.Errorf("risk: symbol %s used %v outside [0, %v]", sym, used, cap)
		}
	}
	for name, used := range b.bucketUsed {
		if cap := b.bucketCaps[name]; used < -capEpsilon || used > cap+capEpsilon {
			return fmt.Errorf("risk: bucket %s used %v outside [0, %v]", name, used, cap)
		}
	}
	return nil
}
