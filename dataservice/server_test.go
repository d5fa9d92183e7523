package dataservice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshal31718/enma-quant-trading-platform/market"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubFetcher struct {
	candles []market.Candle
	err     error

	gotSymbol   string
	gotInterval string
	gotLimit    int
}

func (s *stubFetcher) Fetch(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	s.gotSymbol, s.gotInterval, s.gotLimit = symbol, interval, limit
	return s.candles, s.err
}

func testCandles(n int) []market.Candle {
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Candle, n)
	for i := range out {
		out[i] = market.Candle{
			Symbol: "BTCUSDT",
			Time:   t0.Add(time.Duration(i) * 15 * time.Minute),
			Open:   100, High: 105, Low: 95, Close: 101, Volume: 10,
		}
	}
	return out
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	srv := NewServer(&stubFetcher{}, "", zerolog.Nop())
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHistoricalEndpoint(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fetcher := &stubFetcher{candles: testCandles(3)}
	srv := NewServer(fetcher, dir, zerolog.Nop())

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/historical?symbol=BTCUSDT&timeframe=15m&limit=3", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "BTCUSDT", fetcher.gotSymbol)
	assert.Equal(t, "15m", fetcher.gotInterval)
	assert.Equal(t, 3, fetcher.gotLimit)
	assert.Contains(t, w.Body.String(), `"count":3`)
	assert.Contains(t, w.Body.String(), `"close":101`)

	// the response is also cached as a CSV dataset
	cached := filepath.Join(dir, "BTCUSDT_15m.csv")
	_, err := os.Stat(cached)
	require.NoError(t, err)
	s, err := market.LoadCSV(cached, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
}

func TestHistoricalEndpointDefaultsAndLimits(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{candles: testCandles(1)}
	srv := NewServer(fetcher, "", zerolog.Nop())

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/historical?symbol=ETHUSDT", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultInterval, fetcher.gotInterval)
	assert.Equal(t, defaultLimit, fetcher.gotLimit)

	// the upstream cap is enforced
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/historical?symbol=ETHUSDT&limit=99999", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, maxLimit, fetcher.gotLimit)
}

func TestHistoricalEndpointErrors(t *testing.T) {
	t.Parallel()

	srv := NewServer(&stubFetcher{err: errors.New("exchange down")}, "", zerolog.Nop())

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/historical", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/historical?symbol=BTCUSDT&limit=nope", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/historical?symbol=BTCUSDT", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv := NewServer(&stubFetcher{candles: testCandles(2)}, "", zerolog.Nop())
	router := srv.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/historical?symbol=BTCUSDT", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `dataservice_candles_fetched_total{symbol="BTCUSDT"} 2`)
}
