package service

import (
	"context"
	"time"

	"berrymarket/market-service/internal/app/market/entity"
)

// MessagePublisher определяет интерфейс отправки событий в Kafka
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// CategoryCache определяет интерфейс кеша списка категорий
type CategoryCache interface {
	GetCategories(ctx context.Context) ([]entity.Category, error)
	SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error
	DeleteCategories(ctx context.Context) error
}
