package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pricefinder/internal/aggregator"
	"pricefinder/internal/config"
	"pricefinder/internal/storage"
)

// Server holds the dependencies for the HTTP layer.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	aggregator *aggregator.Aggregator
	pgStore    *storage.PostgresStore
	pinger     Pinger
	logger     *zap.Logger
}

// Pinger is implemented by cache backends that can report liveness
// (the Redis backend); the memory backend needs no ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewServer(cfg *config.Config, agg *aggregator.Aggregator, ps *storage.PostgresStore, pinger Pinger, l *zap.Logger) *Server {
	s := &Server{
		config:     cfg,
		aggregator: agg,
		pgStore:    ps,
		pinger:     pinger,
		logger:     l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.config.ServerPort),
		Handler: s.router,
		// Searches can run up to the aggregation deadline; keep the
		// write timeout above it.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: s.config.SearchTimeout + 15*time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
