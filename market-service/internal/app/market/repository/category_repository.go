package repository

import (
	"context"
	"errors"
	"time"

	"berrymarket/market-service/internal/app/market/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository создает новый репозиторий категорий
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create создает новую категорию
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	result := r.db.WithContext(ctx).Create(category)
	return result.Error
}

// GetByID получает категорию по ID, исключая мягко удаленные
func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var category entity.Category
	result := r.db.WithContext(ctx).First(&category, "id = ? AND is_deleted = ?", id, false)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, result.Error
	}

	return &category, nil
}

// GetAll получает все не удаленные категории
func (r *categoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	result := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Find(&categories)

	if result.Error != nil {
		return nil, result.Error
	}

	return categories, nil
}

// Update обновляет категорию при совпадении версии строки
func (r *categoryRepository) Update(ctx context.Context, category *entity.Category, expectedVersion int64) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&entity.Category{}).
		Where("id = ? AND is_deleted = ? AND row_version = ?", category.ID, false, expectedVersion).
		Updates(map[string]interface{}{
			"name":        category.Name,
			"description": category.Description,
			"updated_at":  now,
			"row_version": expectedVersion + 1,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.resolveWriteMiss(ctx, category.ID)
	}

	category.UpdatedAt = now
	category.RowVersion = expectedVersion + 1
	return nil
}

// SoftDelete помечает категорию удаленной при совпадении версии строки
func (r *categoryRepository) SoftDelete(ctx context.Context, id uuid.UUID, expectedVersion int64) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&entity.Category{}).
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

// resolveWriteMiss различает "запись не найдена" и "версия устарела"
func (r *categoryRepository) resolveWriteMiss(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Category{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCategoryNotFound
	}
	return ErrConcurrencyConflict
}
