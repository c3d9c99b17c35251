package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"berrymarket/pkg/logger"
	"berrymarket/price-service/internal/app/price/config"
	"berrymarket/price-service/internal/app/price/handler"
	"berrymarket/price-service/internal/app/price/repository"
	"berrymarket/price-service/internal/app/price/service"
	"berrymarket/price-service/internal/app/price/util"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init("price-service", logLevel)

	ctx := context.Background()

	// === ПОДКЛЮЧЕНИЕ К POSTGRESQL ===
	pool, err := connectDB(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Msg("Connected to PostgreSQL")

	// === ИНИЦИАЛИЗАЦИЯ KAFKA PRODUCER ===
	kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.PriceUpdatesTopic)
	defer kafkaProducer.Close()
	logger.Info().Str("topic", cfg.Kafka.PriceUpdatesTopic).Msg("Initialized Kafka producer")

	// === ИНИЦИАЛИЗАЦИЯ СЛОЕВ ===
	priceRepo := repository.NewPriceRepository(pool)
	priceService := service.NewPriceService(priceRepo, kafkaProducer)
	priceHandler := handler.NewPriceHandler(priceService)
	router := handler.SetupRoutes(priceHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("Starting Price Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Price Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Price Service stopped gracefully")
}

// connectDB создает пул соединений pgx.
// Retry logic для устойчивости при запуске в Docker
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	for i := 0; i < 10; i++ {
		pool, err = pgxpool.New(ctx, cfg.DSN())
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr != nil {
				err = pingErr
				pool.Close()
			} else {
				return pool, nil
			}
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}
