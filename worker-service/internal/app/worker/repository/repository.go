package repository

import (
	"context"
	"errors"
	"time"

	"berrymarket/worker-service/internal/app/worker/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrProductNotFound     = errors.New("product not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrConcurrencyConflict = errors.New("row version mismatch")
)

// ProductRepository определяет операции worker'а над товарами
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// ApplyPriceUpdate записывает цену и метку времени при совпадении версии строки
	ApplyPriceUpdate(ctx context.Context, id uuid.UUID, price float64, updatedAt time.Time, expectedVersion int64) error
	// DecrementStock уменьшает остаток на единицу, не опускаясь ниже нуля
	DecrementStock(ctx context.Context, id uuid.UUID) error
	// PurgeSoftDeleted физически удаляет строки, мягко удаленные до cutoff
	PurgeSoftDeleted(ctx context.Context, cutoff time.Time) (int64, error)
}

// OrderRepository определяет операции worker'а над заказами
type OrderRepository interface {
	// FindPendingOrderIDs возвращает ID не удаленных заказов товара со статусом pending
	FindPendingOrderIDs(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Order, error)
	PurgeSoftDeleted(ctx context.Context, cutoff time.Time) (int64, error)
}

// PaidOrderLedger - идемпотентный реестр обработанных оплат.
// Защищает от повторного списания остатка при редоставке order_paid
type PaidOrderLedger interface {
	// MarkIfFirst атомарно помечает заказ обработанным.
	// Возвращает true только для первой пометки
	MarkIfFirst(ctx context.Context, orderID uuid.UUID) (bool, error)
	// Release снимает пометку, если обработка после нее не удалась
	Release(ctx context.Context, orderID uuid.UUID) error
}

// NotificationLogRepository - журнал отправленных уведомлений в MongoDB
type NotificationLogRepository interface {
	Insert(ctx context.Context, log *entity.NotificationLog) error
	GetByProductID(ctx context.Context, productID string) ([]entity.NotificationLog, error)
}
