package dataservice

import (
	"context"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/harshal31718/enma-quant-trading-platform/market"
)

const (
	defaultInterval = "15m"
	defaultLimit    = 1000
	maxLimit        = 1500
)

// Fetcher is the candle source backing the historical endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error)
}

// Server exposes historical market data over HTTP and caches each
// response to a CSV file under DataDir.
type Server struct {
	fetcher Fetcher
	dataDir string
	log     zerolog.Logger

	registry *prometheus.Registry
	fetched  *prometheus.CounterVec
}

func NewServer(fetcher Fetcher, dataDir string, log zerolog.Logger) *Server {
	s := &Server{
		fetcher:  fetcher,
		dataDir:  dataDir,
		log:      log,
		registry: prometheus.NewRegistry(),
		fetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dataservice_candles_fetched_total",
			Help: "Number of candles fetched from the upstream exchange.",
		}, []string{"symbol"}),
	}
	s.registry.MustRegister(s.fetched)
	return s
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)
	r.GET("/historical", s.handleHistorical)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

type candleResponse struct {
	Symbol    string  `json:"symbol"`
	Timestamp string  `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (s *Server) handleHistorical(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}
	interval := c.DefaultQuery("timeframe", defaultInterval)

	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	candles, err := s.fetcher.Fetch(c.Request.Context(), symbol, interval, limit)
	if err != nil {
		s.log.Error().Err(err).Str("symbol", symbol).Msg("historical fetch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	s.fetched.WithLabelValues(symbol).Add(float64(len(candles)))

	if s.dataDir != "" {
		path := filepath.Join(s.dataDir, symbol+"_"+interval+".csv")
		if err := market.WriteCSV(path, candles); err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("cache write failed")
		}
	}

	out := make([]candleResponse, len(candles))
	for i, cd := range candles {
		out[i] = candleResponse{
			Symbol:    cd.Symbol,
			Timestamp: cd.Time.Format(time.RFC3339),
			Open:      cd.Open,
			High:      cd.High,
			Low:       cd.Low,
			Close:     cd.Close,
			Volume:    cd.Volume,
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol":    symbol,
		"timeframe": interval,
		"count":     len(out),
		"candles":   out,
	})
}
