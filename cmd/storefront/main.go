package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopping-mart/internal/catalog"
	"shopping-mart/internal/config"
	"shopping-mart/internal/database"
	"shopping-mart/internal/handler"
	"shopping-mart/internal/metrics"
	"shopping-mart/internal/middleware"
	"shopping-mart/internal/router"
	"shopping-mart/internal/service"
	"shopping-mart/internal/storage"
	"shopping-mart/internal/view"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

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
	logger.Info().Str("storage_backend", cfg.Storage.Backend).Msg("starting shopping mart storefront")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	products := catalog.Default()
	m := metrics.New()

	// Initialize services
	productService := service.NewProductService(products, logger)
	cartService := service.NewCartService(store, products, m, logger)
	checkoutService := service.NewCheckoutService(cartService, products, m, logger)

	views, err := view.NewRouter(products, m, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize views: %w", err)
	}

	// Initialize HTTP handlers
	storefrontHandler := handler.NewStorefrontHandler(cartService, checkoutService, views, logger)
	apiHandler := handler.NewAPIHandler(productService, cartService, products, logger)

	// Initialize router
	mux := router.New(storefrontHandler, apiHandler, promhttp.Handler(), middleware.SessionOptions{
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.Secure,
		MaxAge:     cfg.Session.MaxAge(),
	}, logger)

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

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// openStorage builds the configured cart storage backend. The returned
// func releases its resources.
func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.Storage, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}

		pg := storage.NewPostgres(pool, logger)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return pg, pool.Close, nil

	case config.BackendS3:
		s3Store, err := storage.NewS3(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		return s3Store, func() {}, nil

	default:
		logger.Warn().Msg("using in-memory storage, carts are lost on restart")
		return storage.NewMemory(), func() {}, nil
	}
}
