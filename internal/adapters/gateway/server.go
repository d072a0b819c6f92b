package gateway

import (
	"context"
	"net/http"

	"github.com/andrescamacho/tradewars-server/internal/adapters/metrics"
	"github.com/andrescamacho/tradewars-server/internal/application/common"
	"github.com/andrescamacho/tradewars-server/internal/application/dispatch"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/infrastructure/config"
)

// Server is the websocket front door. Every game command arrives as a
// JSON frame on /ws; /metrics exposes the prometheus scrape endpoint.
type Server struct {
	cfg        *config.ServerConfig
	logger     common.Logger
	dispatcher *dispatch.Dispatcher
	hub        *appevents.Hub
	collector  *metrics.Collector

	adminPassword string
	httpServer    *http.Server
}

// NewServer wires the gateway over the dispatcher and hub.
func NewServer(
	cfg *config.ServerConfig,
	logger common.Logger,
	dispatcher *dispatch.Dispatcher,
	hub *appevents.Hub,
	collector *metrics.Collector,
	adminPassword string,
) *Server {
	s := &Server{
		cfg:           cfg,
		logger:        logger,
		dispatcher:    dispatcher,
		hub:           hub,
		collector:     collector,
		adminPassword: adminPassword,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/metrics", collector.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.httpServer = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}
	return s
}

// Start serves until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Log("info", "gateway listening", map[string]interface{}{
		"addr": s.cfg.ListenAddr,
	})
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and drains in-flight requests.
// Open websockets are closed by the hub drain that follows.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
