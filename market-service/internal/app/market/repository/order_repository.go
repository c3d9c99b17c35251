package repository

import (
	"context"
	"errors"
	"time"

	"berrymarket/market-service/internal/app/market/entity"

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

// Create создает новый заказ
func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	result := r.db.WithContext(ctx).Create(order)
	return result.Error
}

// GetByID получает заказ по ID, исключая мягко удаленные
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	result := r.db.WithContext(ctx).First(&order, "id = ? AND is_deleted = ?", id, false)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, result.Error
	}

	return &order, nil
}

// GetAll получает все не удаленные заказы
func (r *orderRepository) GetAll(ctx context.Context) ([]entity.Order, error) {
	var orders []entity.Order
	result := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Find(&orders)

	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

// Update сохраняет статус оплаты заказа при совпадении версии строки.
// Используется переходом pending -> paid
func (r *orderRepository) Update(ctx context.Context, order *entity.Order, expectedVersion int64) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("id = ? AND is_deleted = ? AND row_version = ?", order.ID, false, expectedVersion).
		Updates(map[string]interface{}{
			"payment_status": order.PaymentStatus,
			"paid_at":        order.PaidAt,
			"updated_at":     now,
			"row_version":    expectedVersion + 1,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.resolveWriteMiss(ctx, order.ID)
	}

	order.UpdatedAt = now
	order.RowVersion = expectedVersion + 1
	return nil
}

// SoftDelete помечает заказ удаленным при совпадении версии строки
func (r *orderRepository) SoftDelete(ctx context.Context, id uuid.UUID, expectedVersion int64) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("id = ? AND is_deleted = ? AND row_version = ?", id, false, expectedVersion).
		Updates(map[string]interface{}{
			"is_deleted":  true,
			"deleted_at":  now,
			"updated_at":  now,
			"row_version": expectedVersion + 1,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.resolveWriteMiss(ctx, id)
	}

	return nil
}

func (r *orderRepository) resolveWriteMiss(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrOrderNotFound
	}
	return ErrConcurrencyConflict
}
