package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/stayhub/hotel-booking-svc/internal/adapter/hotelapi"
	"github.com/stayhub/hotel-booking-svc/internal/adapter/httpapi"
	kafkaadp "github.com/stayhub/hotel-booking-svc/internal/adapter/kafka"
	postgresadp "github.com/stayhub/hotel-booking-svc/internal/adapter/postgres"
	redisadp "github.com/stayhub/hotel-booking-svc/internal/adapter/redis"
	"github.com/stayhub/hotel-booking-svc/internal/config"
	kafkainfra "github.com/stayhub/hotel-booking-svc/internal/infrastructure/kafka"
	"github.com/stayhub/hotel-booking-svc/internal/infrastructure/metrics"
	postgresinfra "github.com/stayhub/hotel-booking-svc/internal/infrastructure/postgres"
	redisinfra "github.com/stayhub/hotel-booking-svc/internal/infrastructure/redis"
	"github.com/stayhub/hotel-booking-svc/internal/infrastructure/tracing"
	"github.com/stayhub/hotel-booking-svc/internal/usecase/booking"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Tracing
	shutdownTracer, err := tracing.InitTracer("booking-svc", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer shutdownTracer(context.Background())

	// PostgreSQL
	dbPool, err := postgresinfra.NewPool(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB, cfg.PostgresUser, cfg.PostgresPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Redis
	redisClient := redisinfra.NewClient(cfg.RedisAddr, cfg.RedisPassword)

	// Kafka producer with startup retry: the broker may come up after us.
	var infraProducer *kafkainfra.Producer
	maxRetries := 20
	retryDelay := 3 * time.Second
	log.Info().Strs("brokers", cfg.KafkaBrokers).Msg("Attempting to connect to Kafka...")
	for i := 0; i < maxRetries; i++ {
		infraProducer, err = kafkainfra.NewProducer(cfg.KafkaBrokers)
		if err == nil {
			log.Info().Msg("Kafka producer connected successfully")
			break
		}
		if i < maxRetries-1 {
			log.Warn().Err(err).Int("attempt", i+1).Msg("Failed to create Kafka producer, retrying...")
			time.Sleep(retryDelay)
		} else {
			log.Fatal().Err(err).Int("total_attempts", maxRetries).Msg("Failed to create Kafka producer after all retries")
		}
	}
	defer infraProducer.Close()

	// Adapters
	bookingRepo := postgresadp.NewRepository(dbPool)
	idemCache := redisadp.NewIdempotencyCache(redisClient)
	eventRepo := kafkaadp.NewEventRepository(bookingRepo)
	kafkaProducer := kafkaadp.NewProducer(infraProducer)
	inventory := hotelapi.NewClient(hotelapi.Config{
		BaseURL:        cfg.HotelServiceURL,
		Timeout:        cfg.GatewayTimeout,
		MaxAttempts:    cfg.GatewayMaxAttempts,
		InitialBackoff: cfg.GatewayInitialBackoff,
		MaxBackoff:     cfg.GatewayMaxBackoff,
	})

	// Use case
	bookingService := booking.NewService(
		bookingRepo,
		idemCache,
		eventRepo,
		inventory,
		kafkaProducer,
		cfg,
	)

	// HTTP API
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), metrics.GinMiddleware())
	httpapi.NewHandler(bookingService).Register(router)

	// Metrics server
	metrics.StartServer(cfg.MetricsAddr)

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go bookingService.StartOutboxWorker(workerCtx)
	go bookingService.StartRecoveryWorker(workerCtx)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("Booking service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down...")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Shutdown timeout, forcing stop")
	} else {
		log.Info().Msg("Server stopped gracefully")
	}
}
