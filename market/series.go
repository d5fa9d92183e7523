package market

import (
	"fmt"
	"sort"
	"time"
)

// Series holds the candles of one symbol ordered by timestamp and indexed
// for O(1) lookup by time.
type Series struct {
	symbol  string
	candles []Candle
	byTime  map[int64]int
}

// NewSeries builds a Series from candles, sorting them by time. Duplicate
// timestamps are rejected since they make alignment ambiguous.
func NewSeries(symbol string, candles []Candle) (Series, error) {
	if symbol == "" {
		return Series{}, fmt.Errorf("market: series symbol is required")
	}
	cs := make([]Candle, len(candles))
	copy(cs, candles)
	sort.Slice(cs, func(i, j int) bool { return cs[i].Time.Before(cs[j].Time) })

	byTime := make(map[int64]int, len(cs))
	for i, c := range cs {
		key := c.Time.UnixMilli()
		if _, dup := byTime[key]; dup {
			return Series{}, fmt.Errorf("market: %s has duplicate candle at %s", symbol, c.Time)
		}
		byTime[key] = i
	}
	return Series{symbol: symbol, candles: cs, byTime: byTime}, nil
}

func (s Series) Symbol() string    { return s.symbol }
func (s Series) Len() int          { return len(s.candles) }
func (s Series) Candles() []Candle { return s.candles }

// At returns the candle at the exact timestamp, if present.
func (s Series) At(t time.Time) (Candle, bool) {
	i, ok := s.byTime[t.UnixMilli()]
	if !ok {
		return Candle{}, false
	}
	return s.candles[i], true
}

// Align intersects the timestamps of all series and returns the common
// index, sorted ascending. Symbols whose feeds start or end at different
// times simply contribute fewer timestamps; only bars present in every
// series survive.
func Align(series map[string]Series) []time.Time {
	if len(series) == 0 {
		return nil
	}
	counts := make(map[int64]int)
	times := make(map[int64]time.Time)
	for _, s := range series {
		for _, c := range s.candles {
			key := c.Time.UnixMilli()
			counts[key]++
			times[key] = c.Time
		}
	}
	var common []time.Time
	for key, n := range counts {
		if n == len(series) {
			common = append(common, times[key])
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i].Before(common[j]) })
	return common
}
