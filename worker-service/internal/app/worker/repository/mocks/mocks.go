package mocks

import (
	"context"
	"time"

	"berrymarket/worker-service/internal/app/worker/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository - мок репозитория товаров
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) ApplyPriceUpdate(ctx context.Context, id uuid.UUID, price float64, updatedAt time.Time, expectedVersion int64) error {
	args := m.Called(ctx, id, price, updatedAt, expectedVersion)
	return args.Error(0)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) PurgeSoftDeleted(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockOrderRepository - мок репозитория заказов
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindPendingOrderIDs(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockOrderRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Order, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Order), args.Error(1)
}

func (m *MockOrderRepository) PurgeSoftDeleted(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockPaidOrderLedger - мок реестра обработанных оплат
type MockPaidOrderLedger struct {
	mock.Mock
}

func (m *MockPaidOrderLedger) MarkIfFirst(ctx context.Context, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaidOrderLedger) Release(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

// MockNotificationLogRepository - мок журнала уведомлений
type MockNotificationLogRepository struct {
	mock.Mock
}

func (m *MockNotificationLogRepository) Insert(ctx context.Context, log *entity.NotificationLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockNotificationLogRepository) GetByProductID(ctx context.Context, productID string) ([]entity.NotificationLog, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.NotificationLog), args.Error(1)
}

// MockMessagePublisher - мок Kafka producer
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockEmailSender - мок отправителя уведомлений
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendPriceChangeNotice(ctx context.Context, event *entity.ProductPriceChangedEvent, orders []entity.Order) error {
	args := m.Called(ctx, event, orders)
	return args.Error(0)
}
