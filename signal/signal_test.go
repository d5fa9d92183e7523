package signal

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ts0 = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func TestRandomProviderDeterministic(t *testing.T) {
	t.Parallel()

	a := NewRandom(42)
	b := NewRandom(42)
	for i := 0; i < 100; i++ {
		da, err := a.Signal("BTCUSDT", ts0)
		require.NoError(t, err)
		db, err := b.Signal("BTCUSDT", ts0)
		require.NoError(t, err)
		assert.Equal(t, da, db)
	}
}

func TestRandomProviderEmitsBothDirections(t *testing.T) {
	t.Parallel()

	p := NewRandom(42)
	seen := map[Direction]bool{}
	for i := 0; i < 100; i++ {
		d, err := p.Signal("BTCUSDT", ts0)
		require.NoError(t, err)
		seen[d] = true
	}
	assert.True(t, seen[Long])
	assert.True(t, seen[Flat])
}

func TestReplayProvider(t *testing.T) {
	t.Parallel()

	p := NewReplay()
	p.Set("BTCUSDT", ts0, Long)

	d, err := p.Signal("BTCUSDT", ts0)
	require.NoError(t, err)
	assert.Equal(t, Long, d)

	// unknown timestamp and unknown symbol are flat
	d, err = p.Signal("BTCUSDT", ts0.Add(15*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, Flat, d)

	d, err = p.Signal("ETHUSDT", ts0)
	require.NoError(t, err)
	assert.Equal(t, Flat, d)
}

func TestHTTPProvider(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/signal", r.URL.Path)
		assert.Equal(t, "2025-03-01T00:00:00Z", r.URL.Query().Get("timestamp"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("symbol") {
		case "BTCUSDT":
			w.Write([]byte(`{"symbol":"BTCUSDT","signal":"LONG","confidence":0.9,"timestamp":"2025-03-01T00:00:00Z"}`))
		case "ETHUSDT":
			w.Write([]byte(`{"symbol":"ETHUSDT","signal":"SHORT","confidence":0.7,"timestamp":"2025-03-01T00:00:00Z"}`))
		default:
			w.Write([]byte(`{"symbol":"X","signal":"HOLD","confidence":0.5,"timestamp":"2025-03-01T00:00:00Z"}`))
		}
	}))
	defer srv.Close()

	p := NewHTTP(srv.URL)

	d, err := p.Signal("BTCUSDT", ts0)
	require.NoError(t, err)
	assert.Equal(t, Long, d)

	// SHORT and HOLD collapse to flat
	d, err = p.Signal("ETHUSDT", ts0)
	require.NoError(t, err)
	assert.Equal(t, Flat, d)

	d, err = p.Signal("BNBUSDT", ts0)
	require.NoError(t, err)
	assert.Equal(t, Flat, d)
}

func TestHTTPProviderErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewHTTP(srv.URL)
	_, err := p.Signal("BTCUSDT", ts0)
	assert.Error(t, err)

	dead := NewHTTP("http://127.0.0.1:1")
	_, err = dead.Signal("BTCUSDT", ts0)
	assert.Error(t, err)
}
