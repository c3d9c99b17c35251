package service

import (
	"context"

	"berrymarket/worker-service/internal/app/worker/entity"
)

// MessagePublisher определяет интерфейс для публикации сообщений в Kafka
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// EmailSender определяет интерфейс отправки уведомлений об изменении цены
type EmailSender interface {
	SendPriceChangeNotice(ctx context.Context, event *entity.ProductPriceChangedEvent, orders []entity.Order) error
}
