package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/tokenledger/internal/adapter/http"
	"github.com/iho/tokenledger/internal/adapter/http/handler"
	postgresRepo "github.com/iho/tokenledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/tokenledger/internal/adapter/repository/redis"
	"github.com/iho/tokenledger/internal/forwarder"
	"github.com/iho/tokenledger/internal/infrastructure/config"
	"github.com/iho/tokenledger/internal/infrastructure/logger"
	"github.com/iho/tokenledger/internal/infrastructure/metrics"
	"github.com/iho/tokenledger/internal/infrastructure/postgres"
	"github.com/iho/tokenledger/internal/infrastructure/redis"
	"github.com/iho/tokenledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	zerolog.DefaultContextLogger = &log.Logger

	workerLog := logger.NewSlog(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	eventStore := postgresRepo.NewEventStore(pool)
	listingRepo := postgresRepo.NewListingRepository(pool)
	feedRepo := postgresRepo.NewFeedRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(eventStore, listingRepo, idGen)

	// Initialize handlers
	ledgerHandler := handler.NewLedgerHandler(ledgerUC, m)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LedgerHandler:    ledgerHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		Metrics:          m,
	})

	server := &http.Server{
		Addr:         listenAddr(cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start the feed forwarder
	fwdCtx, stopForwarder := context.WithCancel(ctx)
	fwd := forwarder.New(forwarder.Config{
		Feed:        feedRepo,
		Publisher:   forwarder.NewStreamPublisher(redisClient, cfg.BusStream, cfg.BusStreamPerKind),
		Logger:      workerLog,
		Metrics:     m,
		BatchSize:   cfg.ForwarderBatchSize,
		Interval:    cfg.ForwarderInterval,
		MaxAttempts: cfg.ForwarderMaxAttempts,
	})

	forwarderDone := make(chan struct{})
	go func() {
		defer close(forwarderDone)
		if err := fwd.Run(fwdCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("forwarder stopped")
		}
	}()

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	stopForwarder()
	<-forwarderDone

	log.Info().Msg("server stopped")
}

func listenAddr(port string) string {
	return fmt.Sprintf(":%s", port)
}
