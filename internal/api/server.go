package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"gearinhere/internal/config"
	"gearinhere/internal/monitoring"
	"gearinhere/internal/pipeline"
	"gearinhere/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Server holds the dependencies for the operator HTTP API.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	pipeline   *pipeline.Pipeline
	drafts     storage.DraftStore
	metrics    *monitoring.Metrics
	gatherer   prometheus.Gatherer
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, p *pipeline.Pipeline, ds storage.DraftStore, m *monitoring.Metrics, g prometheus.Gatherer, l *zap.Logger) *Server {
	s := &Server{
		config:   cfg,
		pipeline: p,
		drafts:   ds,
		metrics:  m,
		gatherer: g,
		logger:   l,
	}
	s.router = s.setupRouter()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	// A draft response must outlive every stage it waits on.
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: s.config.DraftRequestTimeout(),
		IdleTimeout:  120 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
