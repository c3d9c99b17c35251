package processor

import (
	"context"
	"errors"
	"time"

	"berrymarket/pkg/logger"
	"berrymarket/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// ErrPoisonMessage помечает сообщение, которое бессмысленно редоставлять:
// битый JSON, несуществующая сущность. Такие сообщения логируются
// и коммитятся, чтобы не блокировать партицию
var ErrPoisonMessage = errors.New("poison message")

// MessageHandler обрабатывает одно сообщение из Kafka
type MessageHandler interface {
	// Name возвращает имя обработчика для логов и метрик
	Name() string
	// ProcessMessage обрабатывает сообщение. Ошибка, обернутая в
	// ErrPoisonMessage, коммитится; любая другая ведет к редоставке
	ProcessMessage(ctx context.Context, message kafka.Message) error
}

// KafkaConsumer читает топик и передает сообщения обработчику.
// Оффсет коммитится строго после успешной обработки (at-least-once)
type KafkaConsumer struct {
	reader   *kafka.Reader
	handler  MessageHandler
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewKafkaConsumer создает consumer для топика
func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	handler MessageHandler,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		StartOffset:    kafka.FirstOffset,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &KafkaConsumer{
		reader:   reader,
		handler:  handler,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start запускает consumer в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().
		Str("handler", c.handler.Name()).
		Str("topic", c.reader.Config().Topic).
		Msg("Starting Kafka consumer")

	go c.consume(ctx)
}

// Stop останавливает consumer и закрывает reader
func (c *KafkaConsumer) Stop() {
	logger.Info().Str("handler", c.handler.Name()).Msg("Stopping Kafka consumer")
	close(c.stopChan)
	<-c.doneChan
	c.reader.Close()
	logger.Info().Str("handler", c.handler.Name()).Msg("Kafka consumer stopped")
}

// consume читает и обрабатывает сообщения из Kafka
func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	topic := c.reader.Config().Topic
	group := c.reader.Config().GroupID

	for {
		select {
		case <-c.stopChan:
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if errors.Is(err, context.DeadlineExceeded) {
					continue
				}

				logger.Error().Err(err).
					Str("handler", c.handler.Name()).
					Msg("Error fetching message")
				metrics.RecordKafkaError("worker-service", topic, "fetch")
				time.Sleep(time.Second)
				continue
			}

			start := time.Now()
			err = c.handler.ProcessMessage(ctx, message)

			switch {
			case err == nil:
				metrics.RecordKafkaMessageConsumed("worker-service", topic, group, time.Since(start))
			case errors.Is(err, ErrPoisonMessage):
				// Редоставка не поможет - логируем и коммитим
				logger.Warn().Err(err).
					Str("handler", c.handler.Name()).
					Int64("offset", message.Offset).
					Int("partition", message.Partition).
					Str("key", string(message.Key)).
					Msg("Poison message committed without processing")
				metrics.RecordKafkaError("worker-service", topic, "poison")
			default:
				// Не коммитим - сообщение будет редоставлено
				logger.Error().Err(err).
					Str("handler", c.handler.Name()).
					Int64("offset", message.Offset).
					Int("partition", message.Partition).
					Str("key", string(message.Key)).
					Msg("Error processing message, will be redelivered")
				metrics.RecordKafkaError("worker-service", topic, "process")
				continue
			}

			if err := c.reader.CommitMessages(ctx, message); err != nil {
				logger.Error().Err(err).
					Str("handler", c.handler.Name()).
					Msg("Error committing message")
				metrics.RecordKafkaError("worker-service", topic, "commit")
			}
		}
	}
}

// GetStats возвращает статистику reader'а
func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
