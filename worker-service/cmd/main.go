package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	applogger "berrymarket/pkg/logger"
	"berrymarket/worker-service/internal/app/worker/config"
	"berrymarket/worker-service/internal/app/worker/processor"
	"berrymarket/worker-service/internal/app/worker/repository"
	"berrymarket/worker-service/internal/app/worker/service"
	"berrymarket/worker-service/internal/app/worker/util"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	applogger.Init("worker-service", getLogLevel())
	applogger.Info().Msg("Starting Worker Service...")

	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	cfg, err := config.Load()
	if err != nil {
		applogger.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx := context.Background()

	// === ПОДКЛЮЧЕНИЕ К POSTGRESQL ===
	db, err := connectDB(cfg.Database)
	if err != nil {
		applogger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	applogger.Info().Msg("Successfully connected to PostgreSQL")

	// === ПОДКЛЮЧЕНИЕ К REDIS ===
	redisClient, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		applogger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	applogger.Info().Msg("Successfully connected to Redis")

	// === ПОДКЛЮЧЕНИЕ К MONGODB ===
	mongoClient, err := connectMongo(ctx, cfg.Mongo)
	if err != nil {
		applogger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(ctx)
	mongoDB := mongoClient.Database(cfg.Mongo.Database)
	applogger.Info().Msg("Successfully connected to MongoDB")

	// === ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ ===
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	ledger := repository.NewPaidOrderLedger(redisClient, cfg.Redis.LedgerTTL)
	notificationLogRepo := repository.NewNotificationLogRepository(mongoDB)
	applogger.Info().Msg("Repositories initialized")

	// === ИНИЦИАЛИЗАЦИЯ PRODUCER ===
	priceChangedProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.PriceChangedTopic)
	defer priceChangedProducer.Close()

	// === ИНИЦИАЛИЗАЦИЯ СЕРВИСОВ ===
	reconciliationSvc := service.NewPriceReconciliationService(productRepo, orderRepo, priceChangedProducer)
	stockSvc := service.NewStockService(productRepo, ledger)
	emailClient := service.NewSMTPEmailClient(
		cfg.SMTP.Host, cfg.SMTP.Port,
		cfg.SMTP.From, cfg.SMTP.Recipient,
		cfg.SMTP.Username, cfg.SMTP.Password,
	)
	notificationSvc := service.NewNotificationService(orderRepo, emailClient, notificationLogRepo, cfg.SMTP.Recipient)
	purgeSvc := service.NewPurgeService(productRepo, orderRepo, cfg.Purge.Retention)
	applogger.Info().Msg("Services initialized")

	// === ИНИЦИАЛИЗАЦИЯ KAFKA CONSUMERS ===
	priceConsumer := processor.NewKafkaConsumer(
		cfg.Kafka.Brokers, cfg.Kafka.PriceUpdatesTopic, cfg.Kafka.GroupID,
		cfg.Kafka.MinBytes, cfg.Kafka.MaxBytes,
		processor.NewPriceUpdateHandler(reconciliationSvc),
	)
	notificationConsumer := processor.NewKafkaConsumer(
		cfg.Kafka.Brokers, cfg.Kafka.PriceChangedTopic, cfg.Kafka.GroupID,
		cfg.Kafka.MinBytes, cfg.Kafka.MaxBytes,
		processor.NewPriceChangedHandler(notificationSvc),
	)
	orderPaidConsumer := processor.NewKafkaConsumer(
		cfg.Kafka.Brokers, cfg.Kafka.OrderPaidTopic, cfg.Kafka.GroupID,
		cfg.Kafka.MinBytes, cfg.Kafka.MaxBytes,
		processor.NewOrderPaidHandler(stockSvc),
	)

	priceConsumer.Start(ctx)
	defer priceConsumer.Stop()
	notificationConsumer.Start(ctx)
	defer notificationConsumer.Stop()
	orderPaidConsumer.Start(ctx)
	defer orderPaidConsumer.Stop()
	applogger.Info().
		Str("group", cfg.Kafka.GroupID).
		Msg("Kafka consumers started")

	// === ИНИЦИАЛИЗАЦИЯ CRON SCHEDULER ===
	cronScheduler := processor.NewCronScheduler(purgeSvc)
	if err := cronScheduler.Start(ctx, cfg.Purge.Schedule); err != nil {
		applogger.Fatal().Err(err).Msg("Failed to start cron scheduler")
	}
	defer cronScheduler.Stop()

	// === HEALTHCHECK И МЕТРИКИ ===
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:    ":8082",
		Handler: mux,
	}

	go func() {
		applogger.Info().Msg("Starting healthcheck HTTP server on :8082")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applogger.Error().Err(err).Msg("HTTP server error")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	applogger.Info().Msg("Worker Service is running")

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	applogger.Info().Msg("Shutting down Worker Service...")
}

func getLogLevel() string {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return level
	}
	return "info"
}

// connectDB устанавливает соединение с PostgreSQL используя GORM
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	// Retry logic для устойчивости при запуске в Docker
	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if pingErr := sqlDB.Ping(); pingErr != nil {
				err = pingErr
			} else {
				sqlDB.SetMaxOpenConns(10)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				sqlDB.SetConnMaxIdleTime(1 * time.Minute)
				return db, nil
			}
		}
		applogger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to database, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// connectRedis устанавливает соединение с Redis
func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	for i := 0; i < 10; i++ {
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		applogger.Warn().Int("attempt", i+1).Msg("Failed to connect to Redis, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to Redis after 10 attempts")
}

// connectMongo устанавливает соединение с MongoDB
func connectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	for i := 0; i < 10; i++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		err = client.Ping(pingCtx, nil)
		pingCancel()
		if err == nil {
			return client, nil
		}
		applogger.Warn().Int("attempt", i+1).Msg("Failed to ping MongoDB, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to MongoDB after 10 attempts: %w", err)
}
