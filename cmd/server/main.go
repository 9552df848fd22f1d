package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pricefinder/internal/aggregator"
	"pricefinder/internal/api"
	"pricefinder/internal/cache"
	"pricefinder/internal/config"
	"pricefinder/internal/dedup"
	"pricefinder/internal/extractor"
	"pricefinder/internal/fetcher"
	"pricefinder/internal/monitoring"
	"pricefinder/internal/storage"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	// Result cache: in-process by default, Redis when configured
	var (
		store  cache.Store
		pinger api.Pinger
	)
	if cfg.CacheBackend == "redis" {
		rc := cache.NewRedis(cfg.RedisAddr, cfg.CacheMaxSize, cfg.CacheTTL, logger)
		defer rc.Close()
		store, pinger = rc, rc
	} else {
		store = cache.NewMemory(cfg.CacheMaxSize, cfg.CacheTTL)
	}

	// Optional search-history store
	var pgStore *storage.PostgresStore
	if cfg.PostgresURL != "" {
		pgStore, err = storage.NewPostgresStore(context.Background(), cfg.PostgresURL)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pgStore.Close()
	}

	metrics := monitoring.NewMetrics()
	pageFetcher := fetcher.NewHTTPFetcher(cfg.FetchTimeout, logger)
	defer pageFetcher.Close()

	agg := aggregator.New(pageFetcher, extractor.New(logger), store, metrics, logger, aggregator.Options{
		SearchTimeout:         cfg.SearchTimeout,
		MaxLinksPerSource:     cfg.MaxLinksPerSource,
		MaxCountryConcurrency: cfg.MaxCountryConc,
		DedupPolicy:           dedup.ParsePolicy(cfg.DedupPolicy),
	})
	if pgStore != nil {
		agg.WithHistory(pgStore)
	}

	server := api.NewServer(cfg, agg, pgStore, pinger, logger)

	// Graceful shutdown
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
