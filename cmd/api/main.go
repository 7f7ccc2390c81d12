package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fruitstore/internal/blob"
	"fruitstore/internal/config"
	"fruitstore/internal/database"
	"fruitstore/internal/handler"
	"fruitstore/internal/metrics"
	"fruitstore/internal/repository"
	"fruitstore/internal/router"
	"fruitstore/internal/service"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting fruitstore API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.NewMigrator(pool, logger).Up(ctx); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	var (
		gatherer prometheus.Gatherer
		m        *metrics.Metrics
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		gatherer = reg
		m = metrics.New(reg)
	}

	// Initialize repositories
	fruitRepo := repository.NewFruitRepository(pool, logger)
	stockRepo := repository.NewStockHistoryRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	paymentRepo := repository.NewPaymentRepository(pool, logger)
	customerRepo := repository.NewCustomerRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	reportRepo := repository.NewReportRepository(pool, logger)

	txr := repository.NewTransactor(pool, repository.TxOptions{
		MaxRetries:     cfg.Database.TxMaxRetries,
		InitialBackoff: cfg.Database.TxRetryBackoff,
	}, m, logger)

	store := newBlobStore(ctx, cfg.Storage, logger)

	// Initialize services
	orderService := service.NewOrderService(txr, service.OrderRepos{
		Orders:    orderRepo,
		Fruits:    fruitRepo,
		Stock:     stockRepo,
		Payments:  paymentRepo,
		Customers: customerRepo,
		Users:     userRepo,
	}, m, logger)
	paymentService := service.NewPaymentService(txr, orderRepo, paymentRepo, store, cfg.Storage.MaxUploadBytes, m, logger)
	fruitService := service.NewFruitService(fruitRepo, stockRepo, store, cfg.Storage.MaxUploadBytes, logger)
	customerService := service.NewCustomerService(customerRepo, orderRepo, logger)
	userService := service.NewUserService(userRepo, cfg.Security.BcryptCost, logger)
	reportService := service.NewReportService(reportRepo, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Fruits:    handler.NewFruitHandler(fruitService, cfg.Storage.MaxUploadBytes, logger),
		Orders:    handler.NewOrderHandler(orderService, logger),
		Payments:  handler.NewPaymentHandler(paymentService, cfg.Storage.MaxUploadBytes, logger),
		Customers: handler.NewCustomerHandler(customerService, logger),
		Users:     handler.NewUserHandler(userService, logger),
		Reports:   handler.NewReportHandler(reportService, logger),
	}, router.Options{
		APIKey:    cfg.Auth.APIKey,
		Gatherer:  gatherer,
		Metrics:   m,
		UploadDir: cfg.Storage.LocalDir,
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
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
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

// newBlobStore prefers S3 when enabled and always keeps the local directory as a fallback.
func newBlobStore(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) blob.Store {
	fileStore := blob.NewFileStore(cfg.LocalDir, cfg.LocalBaseURL, logger)

	if !cfg.S3Enabled {
		logger.Info().Msg("using local file system for uploads (S3 disabled)")
		return blob.NewFallbackStore(nil, fileStore, false, logger)
	}

	s3Store, err := blob.NewS3Store(ctx, blob.S3Options{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Prefix:    cfg.S3Prefix,
		PublicURL: cfg.S3PublicURL,
	}, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 store, falling back to local file system only")
		return blob.NewFallbackStore(nil, fileStore, false, logger)
	}

	return blob.NewFallbackStore(s3Store, fileStore, true, logger)
}
