package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит все настройки Worker Service:
// PostgreSQL, Redis, MongoDB, Kafka, SMTP и расписание очистки
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	Kafka    KafkaConfig
	SMTP     SMTPConfig
	Purge    PurgeConfig
}

// DatabaseConfig - настройки подключения к PostgreSQL.
// Worker пишет в те же таблицы products/orders, что и market-service
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig - настройки Redis для реестра обработанных оплат
type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	LedgerTTL time.Duration // Срок хранения пометок об обработанных оплатах
}

// MongoConfig - настройки MongoDB для журнала уведомлений
type MongoConfig struct {
	URI      string
	Database string
}

// KafkaConfig - настройки Kafka: три входных топика и один выходной
type KafkaConfig struct {
	Brokers           []string
	PriceUpdatesTopic string // Входной: события обновления цены
	PriceChangedTopic string // Входной и выходной: уведомления об изменении
	OrderPaidTopic    string // Входной: события оплаты
	GroupID           string
	MinBytes          int
	MaxBytes          int
}

// SMTPConfig - настройки отправки почтовых уведомлений
type SMTPConfig struct {
	Host      string
	Port      string
	From      string
	Recipient string
	Username  string
	Password  string
}

// PurgeConfig - расписание и период хранения для очистки мягко удаленных строк
type PurgeConfig struct {
	Schedule  string
	Retention time.Duration
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	ledgerTTLDays := getEnvInt("REDIS_LEDGER_TTL_DAYS", 7)
	retentionDays := getEnvInt("PURGE_RETENTION_DAYS", 30)

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "market_service"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvInt("REDIS_DB", 1), // Отдельная БД для реестра оплат
			LedgerTTL: time.Duration(ledgerTTLDays) * 24 * time.Hour,
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "worker_service"),
		},
		Kafka: KafkaConfig{
			Brokers:           []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			PriceUpdatesTopic: getEnv("KAFKA_PRICE_UPDATES_TOPIC", "price_updates"),
			PriceChangedTopic: getEnv("KAFKA_PRICE_CHANGED_TOPIC", "product_price_changed"),
			OrderPaidTopic:    getEnv("KAFKA_ORDER_PAID_TOPIC", "order_paid"),
			GroupID:           getEnv("KAFKA_GROUP_ID", "berrymarket-worker"),
			MinBytes:          getEnvInt("KAFKA_MIN_BYTES", 1),
			MaxBytes:          getEnvInt("KAFKA_MAX_BYTES", 10e6),
		},
		SMTP: SMTPConfig{
			Host:      getEnv("SMTP_HOST", "localhost"),
			Port:      getEnv("SMTP_PORT", "1025"),
			From:      getEnv("SMTP_FROM", "noreply@berrymarket.local"),
			Recipient: getEnv("SMTP_RECIPIENT", "orders@berrymarket.local"),
			Username:  getEnv("SMTP_USERNAME", ""),
			Password:  getEnv("SMTP_PASSWORD", ""),
		},
		Purge: PurgeConfig{
			// По умолчанию чистим каждую ночь в 03:00
			Schedule:  getEnv("PURGE_SCHEDULE", "0 3 * * *"),
			Retention: time.Duration(retentionDays) * 24 * time.Hour,
		},
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает значение переменной окружения как int
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
