package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medcart/internal/cart"
	"medcart/internal/config"
	"medcart/internal/database"
	"medcart/internal/formulary"
	"medcart/internal/gateway"
	"medcart/internal/handler"
	"medcart/internal/lifecycle"
	"medcart/internal/orderview"
	"medcart/internal/repository"
	"medcart/internal/router"
)

// defaultShippingFee is the flat fee added to every order at checkout.
const defaultShippingFee = 5.0

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting medcart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize formulary loader with S3 and local fallback
	fileLoader := formulary.NewFileLoader(logger)
	var snapshotLoader formulary.Loader

	if cfg.Formulary.S3Enabled {
		s3Loader, err := formulary.NewS3Loader(ctx, cfg.Formulary.S3Bucket, cfg.Formulary.S3Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			snapshotLoader = fileLoader
		} else {
			snapshotLoader = formulary.NewFallbackLoader(s3Loader, fileLoader, cfg.Formulary.S3Prefix, logger)
		}
	} else {
		snapshotLoader = fileLoader
		logger.Info().Msg("using local file system for formulary snapshots (S3 disabled)")
	}

	snapshot, err := snapshotLoader.Load(ctx, cfg.Formulary.FilePath)
	if err != nil {
		return fmt.Errorf("failed to load formulary snapshot: %w", err)
	}
	catalog := formulary.NewCatalog(snapshot)
	logger.Info().Int("medicines", catalog.Size()).Msg("formulary snapshot loaded")

	// Initialize cart persistence and the in-memory store
	cartRepo := repository.NewCartRepository(pool, logger)
	cartStore := cart.NewStore(cartRepo, catalog, logger)

	// Initialize the order view store. The Redis list cache is optional:
	// the views fall back to the remote service when it is unavailable.
	var listCache orderview.ListCache
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, order view cache disabled")
	} else {
		defer redisClient.Close()
		listCache = orderview.NewRedisCache(redisClient, time.Duration(cfg.Redis.TTL)*time.Second, logger)
	}

	var viewCache orderview.Cache
	if listCache != nil {
		viewCache = listCache
	}
	views := orderview.NewStore(viewCache, logger)

	// Initialize the order service client and the sync gateway
	httpClient := &http.Client{Timeout: time.Duration(cfg.OrderService.Timeout) * time.Second}
	orderClient, err := gateway.NewClient(cfg.OrderService.BaseURL, httpClient, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize order service client: %w", err)
	}

	recorder := lifecycle.NewRecorder()
	syncGateway := gateway.NewSyncGateway(orderClient, views, listCache, recorder, cartStore, catalog, defaultShippingFee, logger)

	// Initialize HTTP handlers
	cartHandler := handler.NewCartHandler(cartStore, syncGateway, logger)
	orderHandler := handler.NewOrderHandler(syncGateway, logger)

	// Initialize router
	mux := router.New(cartHandler, orderHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
