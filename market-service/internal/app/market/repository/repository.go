package repository

import (
	"context"
	"errors"

	"berrymarket/market-service/internal/app/market/entity"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	// ErrConcurrencyConflict возвращается когда запись существует,
	// но переданная версия строки устарела
	ErrConcurrencyConflict = errors.New("row version conflict")
)

// Все методы чтения отфильтровывают мягко удаленные записи.
// Update и SoftDelete выполняются условно по row_version:
// несовпадение версии приводит к ErrConcurrencyConflict, а не к перезаписи

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category, expectedVersion int64) error
	SoftDelete(ctx context.Context, id uuid.UUID, expectedVersion int64) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetWithCategory(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetAll(ctx context.Context) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product, expectedVersion int64) error
	SoftDelete(ctx context.Context, id uuid.UUID, expectedVersion int64) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetAll(ctx context.Context) ([]entity.Order, error)
	Update(ctx context.Context, order *entity.Order, expectedVersion int64) error
	SoftDelete(ctx context.Context, id uuid.UUID, expectedVersion int64) error
}
