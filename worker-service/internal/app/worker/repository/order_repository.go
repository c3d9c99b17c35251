package repository

import (
	"context"
	"time"

	"berrymarket/worker-service/internal/app/worker/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository создает новый репозиторий заказов
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// FindPendingOrderIDs возвращает ID не удаленных заказов товара со статусом pending.
// Пустой список - нормальный результат, не ошибка
func (r *orderRepository) FindPendingOrderIDs(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	result := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("product_id = ? AND payment_status = ? AND is_deleted = ?", productID, entity.PaymentStatusPending, false).
		Order("created_at ASC").
		Pluck("id", &ids)

	if result.Error != nil {
		return nil, result.Error
	}

	return ids, nil
}

// GetByIDs получает заказы по списку ID, исключая мягко удаленные
func (r *orderRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var orders []entity.Order
	result := r.db.WithContext(ctx).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Find(&orders)

	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

// PurgeSoftDeleted физически удаляет заказы, мягко удаленные до cutoff
func (r *orderRepository) PurgeSoftDeleted(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("is_deleted = ? AND deleted_at < ?", true, cutoff).
		Delete(&entity.Order{})

	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
