package signalservice

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var directions = []string{"LONG", "SHORT", "HOLD"}

// Server hands out mock trade signals. Signals are drawn from a seeded
// generator so a given seed always produces the same sequence.
type Server struct {
	log zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand

	registry *prometheus.Registry
	served   *prometheus.CounterVec
}

func NewServer(seed int64, log zerolog.Logger) *Server {
	s := &Server{
		log:      log,
		rng:      rand.New(rand.NewSource(seed)),
		registry: prometheus.NewRegistry(),
		served: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalservice_signals_served_total",
			Help: "Number of signals served, by direction.",
		}, []string{"signal"}),
	}
	s.registry.MustRegister(s.served)
	return s
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)
	r.GET("/signal", s.handleSignal)
	r.GET("/signals/mock", s.handleMockBatch)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

type signalResponse struct {
	Symbol     string  `json:"symbol"`
	Signal     string  `json:"signal"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
}

func (s *Server) next(symbol string) signalResponse {
	s.mu.Lock()
	dir := directions[s.rng.Intn(len(directions))]
	conf := 0.5 + s.rng.Float64()*0.5
	s.mu.Unlock()

	return signalResponse{
		Symbol:     symbol,
		Signal:     dir,
		Confidence: conf,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleSignal(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}
	resp := s.next(symbol)
	s.served.WithLabelValues(resp.Signal).Inc()
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleMockBatch(c *gin.Context) {
	symbol := c.DefaultQuery("symbol", "BTCUSDT")
	out := make([]signalResponse, 10)
	for i := range out {
		out[i] = s.next(symbol)
		s.served.WithLabelValues(out[i].Signal).Inc()
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "signals": out})
}
