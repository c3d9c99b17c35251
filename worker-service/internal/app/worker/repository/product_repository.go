package repository

import (
	"context"
	"errors"
	"time"

	"berrymarket/worker-service/internal/app/worker/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// GetByID получает товар по ID, исключая мягко удаленные
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).First(&product, "id = ? AND is_deleted = ?", id, false)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}

	return &product, nil
}

// ApplyPriceUpdate записывает цену и метку времени события.
// Условие по row_version превращает проигранную гонку в ConcurrencyConflict,
// а не в потерянную запись
func (r *productRepository) ApplyPriceUpdate(ctx context.Context, id uuid.UUID, price float64, updatedAt time.Time, expectedVersion int64) error {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ? AND is_deleted = ? AND row_version = ?", id, false, expectedVersion).
		Updates(map[string]interface{}{
			"price":       price,
			"updated_at":  updatedAt,
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

// DecrementStock уменьшает остаток на единицу.
// Условие stock > 0 не дает уйти в минус: при нулевом остатке
// запись не меняется и операция считается выполненной
func (r *productRepository) DecrementStock(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ? AND is_deleted = ? AND stock > ?", id, false, 0).
		Updates(map[string]interface{}{
			"stock":       gorm.Expr("stock - ?", 1),
			"updated_at":  time.Now().UTC(),
			"row_version": gorm.Expr("row_version + ?", 1),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		// Либо товара нет, либо остаток уже нулевой
		var count int64
		if err := r.db.WithContext(ctx).Model(&entity.Product{}).
			Where("id = ? AND is_deleted = ?", id, false).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrProductNotFound
		}
	}

	return nil
}

// PurgeSoftDeleted физически удаляет товары, мягко удаленные до cutoff
func (r *productRepository) PurgeSoftDeleted(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("is_deleted = ? AND deleted_at < ?", true, cutoff).
		Delete(&entity.Product{})

	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (r *productRepository) resolveWriteMiss(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrProductNotFound
	}
	return ErrConcurrencyConflict
}
