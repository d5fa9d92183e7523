package dataservice

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"

	"github.com/harshal31718/enma-quant-trading-platform/market"
)

// KlinesFetcher pulls historical candles from the Binance USD-M futures API.
type KlinesFetcher struct {
	client *futures.Client
}

func NewKlinesFetcher(client *futures.Client) *KlinesFetcher {
	return &KlinesFetcher{client: client}
}

// Fetch returns up to limit candles for symbol at the given interval
// (e.g. "15m"), oldest first.
func (f *KlinesFetcher) Fetch(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	klines, err := f.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("dataservice: fetch klines %s %s: %w", symbol, interval, err)
	}

	candles := make([]market.Candle, 0, len(klines))
	for _, k := range klines {
		c, err := klineToCandle(symbol, k)
		if err != nil {
			return nil, err
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func klineToCandle(symbol string, k *futures.Kline) (market.Candle, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("dataservice: parse open %q: %w", k.Open, err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("dataservice: parse high %q: %w", k.High, err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("dataservice: parse low %q: %w", k.Low, err)
	}
	closePx, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("dataservice: parse close %q: %w", k.Close, err)
	}
	volume, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("dataservice: parse volume %q: %w", k.Volume, err)
	}
	return market.Candle{
		Symbol: symbol,
		Time:   time.UnixMilli(k.OpenTime).UTC(),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePx,
		Volume: volume,
	}, nil
}
