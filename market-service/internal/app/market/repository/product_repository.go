package repository

import (
	"context"
	"errors"
	"time"

	"berrymarket/market-service/internal/app/market/entity"

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

// Create создает новый товар
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Create(product)
	return result.Error
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

// GetWithCategory получает товар с информацией о категории
func (r *productRepository) GetWithCategory(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).
		Preload("Category").
		First(&product, "id = ? AND is_deleted = ?", id, false)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}

	return &product, nil
}

// GetAll получает все не удаленные товары с категориями
func (r *productRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	result := r.db.WithContext(ctx).
		Preload("Category").
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

// Update обновляет товар при совпадении версии строки
func (r *productRepository) Update(ctx context.Context, product *entity.Product, expectedVersion int64) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ? AND is_deleted = ? AND row_version = ?", product.ID, false, expectedVersion).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"stock":       product.Stock,
			"category_id": product.CategoryID,
			"updated_at":  now,
			"row_version": expectedVersion + 1,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.resolveWriteMiss(ctx, product.ID)
	}

	product.UpdatedAt = now
	product.RowVersion = expectedVersion + 1
	return nil
}

// SoftDelete помечает товар удаленным при совпадении версии строки
func (r *productRepository) SoftDelete(ctx context.Context, id uuid.UUID, expectedVersion int64) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
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
