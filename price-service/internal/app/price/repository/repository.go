package repository

import (
	"context"

	"berrymarket/price-service/internal/app/price/entity"

	"github.com/google/uuid"
)

// PriceRepository определяет операции над журналом цен
type PriceRepository interface {
	Insert(ctx context.Context, record *entity.PriceRecord) error
	// GetByProductID возвращает историю цен товара, новые записи первыми.
	// Пустая история - валидный результат, не ошибка
	GetByProductID(ctx context.Context, productID uuid.UUID) ([]entity.PriceRecord, error)
}
