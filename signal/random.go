package signal

import (
	"math/rand"
	"time"
)

// RandomProvider is the mock signal source: a uniformly random LONG/FLAT
// draw from a seeded generator. It stands in for a real classifier and
// keeps runs reproducible as long as the call sequence is deterministic,
// which the engine guarantees by scanning symbols in configuration order.
type RandomProvider struct {
	rng *rand.Rand
}

// NewRandom returns a provider seeded for reproducibility.
func NewRandom(seed int64) *RandomProvider {
	return &RandomProvider{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomProvider) Signal(symbol string, ts time.Time) (Direction, error) {
	if p.rng.Intn(2) == 0 {
		return Long, nil
	}
	return Flat, nil
}
