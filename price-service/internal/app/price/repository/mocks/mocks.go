package mocks

import (
	"context"

	"berrymarket/price-service/internal/app/price/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockPriceRepository - мок репозитория журнала цен
type MockPriceRepository struct {
	mock.Mock
}

func (m *MockPriceRepository) Insert(ctx context.Context, record *entity.PriceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPriceRepository) GetByProductID(ctx context.Context, productID uuid.UUID) ([]entity.PriceRecord, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PriceRecord), args.Error(1)
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
