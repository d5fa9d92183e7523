package signal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPProvider queries a remote signal service speaking the mock-ML
// contract: GET {base}/signal?symbol=S&timestamp=RFC3339 returning
// {"symbol": ..., "signal": "LONG"|"SHORT"|"HOLD", ...}. Any non-LONG
// answer maps to FLAT. Transport failures are surfaced as errors since a
// dead signal source is a configuration problem, not a strategy outcome.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTP(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type signalResponse struct {
	Symbol     string  `json:"symbol"`
	Signal     string  `json:"signal"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
}

func (p *HTTPProvider) Signal(symbol string, ts time.Time) (Direction, error) {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return Flat, fmt.Errorf("signal: bad base url %q: %w", p.baseURL, err)
	}
	u.Path = "/signal"
	q := u.Query()
	q.Set("symbol", symbol)
	q.Set("timestamp", ts.UTC().Format(time.RFC3339))
	u.RawQuery = q.Encode()

	resp, err := p.client.Get(u.String())
	if err != nil {
		return Flat, fmt.Errorf("signal: fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Flat, fmt.Errorf("signal: service returned %d for %s", resp.StatusCode, symbol)
	}

	var body signalResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Flat, fmt.Errorf("signal: decode response for %s: %w", symbol, err)
	}
	if body.Signal == string(Long) {
		return Long, nil
	}
	return Flat, nil
}
