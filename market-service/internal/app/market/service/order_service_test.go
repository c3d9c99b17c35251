package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"berrymarket/market-service/internal/app/market/entity"
	"berrymarket/market-service/internal/app/market/repository"
	"berrymarket/market-service/internal/app/market/repository/mocks"
	"berrymarket/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter("market-service-test", "error", io.Discard)
	os.Exit(m.Run())
}

// Хелперы для создания тестовых данных

func newTestProduct() *entity.Product {
	return &entity.Product{
		Base:        entity.NewBase(),
		Name:        "Laptop",
		Description: "High-performance laptop for developers",
		Price:       1299.99,
		Stock:       5,
		CategoryID:  uuid.New(),
	}
}

func newPendingOrder(productID uuid.UUID) *entity.Order {
	return &entity.Order{
		Base:          entity.NewBase(),
		ProductID:     productID,
		PaymentStatus: entity.PaymentStatusPending,
	}
}

// ==================== CreateOrder Tests ====================

func TestOrderService_CreateOrder_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	producer := new(mocks.MockMessagePublisher)

	product := newTestProduct()
	productRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	orderRepo.On("Create", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)

	svc := NewOrderService(orderRepo, productRepo, producer)

	// Act
	order, err := svc.CreateOrder(ctx, &entity.CreateOrderRequest{ProductID: product.ID})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, product.ID, order.ProductID)
	assert.Equal(t, entity.PaymentStatusPending, order.PaymentStatus)
	assert.Nil(t, order.PaidAt)
	assert.NotEqual(t, uuid.Nil, order.ID)

	orderRepo.AssertExpectations(t)
}

func TestOrderService_CreateOrder_ProductNotFound(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	producer := new(mocks.MockMessagePublisher)

	productID := uuid.New()
	productRepo.On("GetByID", ctx, productID).Return(nil, repository.ErrProductNotFound)

	svc := NewOrderService(orderRepo, productRepo, producer)

	order, err := svc.CreateOrder(ctx, &entity.CreateOrderRequest{ProductID: productID})

	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestOrderService_CreateOrder_OutOfStock(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	producer := new(mocks.MockMessagePublisher)

	product := newTestProduct()
	product.Stock = 0
	productRepo.On("GetByID", ctx, product.ID).Return(product, nil)

	svc := NewOrderService(orderRepo, productRepo, producer)

	order, err := svc.CreateOrder(ctx, &entity.CreateOrderRequest{ProductID: product.ID})

	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrProductOutOfStock)
	orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// ==================== PayOrder Tests ====================

func TestOrderService_PayOrder_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	producer := new(mocks.MockMessagePublisher)

	order := newPendingOrder(uuid.New())
	orderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
	orderRepo.On("Update", ctx, order, order.RowVersion).Return(nil)
	producer.On("PublishMessage", ctx, order.ID.String(), mock.Anything).Return(nil)

	svc := NewOrderService(orderRepo, productRepo, producer)

	// Act
	paid, err := svc.PayOrder(ctx, order.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaidAt)
	assert.WithinDuration(t, time.Now().UTC(), *paid.PaidAt, 5*time.Second)

	// Проверяем тело опубликованного события
	payload := producer.Calls[0].Arguments.Get(2).([]byte)
	var event entity.OrderPaidEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, order.ID, event.OrderID)
	assert.Equal(t, order.ProductID, event.ProductID)

	orderRepo.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestOrderService_PayOrder_AlreadyPaid(t *testing.T) {
	// Повторная команда оплаты - жесткий отказ, событие не отправляется
	ctx := context.Background()
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	producer := new(mocks.MockMessagePublisher)

	paidAt := time.Now().UTC().Add(-time.Hour)
	order := newPendingOrder(uuid.New())
	order.PaymentStatus = entity.PaymentStatusPaid
	order.PaidAt = &paidAt

	orderRepo.On("GetByID", ctx, order.ID).Return(order, nil)

	svc := NewOrderService(orderRepo, productRepo, producer)

	result, err := svc.PayOrder(ctx, order.ID)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
	// PaidAt и статус не изменились
	assert.Equal(t, paidAt, *order.PaidAt)
	orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	producer.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_PayOrder_NotFound(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	producer := new(mocks.MockMessagePublisher)

	orderID := uuid.New()
	orderRepo.On("GetByID", ctx, orderID).Return(nil, repository.ErrOrderNotFound)

	svc := NewOrderService(orderRepo, productRepo, producer)

	result, err := svc.PayOrder(ctx, orderID)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_PayOrder_PublishFailurePropagates(t *testing.T) {
	// Ошибка публикации не должна рапортоваться как успех оплаты
	ctx := context.Background()
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	producer := new(mocks.MockMessagePublisher)

	order := newPendingOrder(uuid.New())
	orderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
	orderRepo.On("Update", ctx, order, order.RowVersion).Return(nil)
	producer.On("PublishMessage", ctx, order.ID.String(), mock.Anything).Return(errors.New("broker unavailable"))

	svc := NewOrderService(orderRepo, productRepo, producer)

	result, err := svc.PayOrder(ctx, order.ID)

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event not published")
}

func TestOrderService_PayOrder_ConcurrencyConflict(t *testing.T) {
	// Конкурирующая оплата того же заказа проигрывает по версии строки
	ctx := context.Background()
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	producer := new(mocks.MockMessagePublisher)

	order := newPendingOrder(uuid.New())
	orderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
	orderRepo.On("Update", ctx, order, order.RowVersion).Return(repository.ErrConcurrencyConflict)

	svc := NewOrderService(orderRepo, productRepo, producer)

	result, err := svc.PayOrder(ctx, order.ID)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	producer.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
}

// ==================== DeleteOrder Tests ====================

func TestOrderService_DeleteOrder_StaleVersion(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	producer := new(mocks.MockMessagePublisher)

	orderID := uuid.New()
	orderRepo.On("SoftDelete", ctx, orderID, int64(2)).Return(repository.ErrConcurrencyConflict)

	svc := NewOrderService(orderRepo, productRepo, producer)

	err := svc.DeleteOrder(ctx, orderID, 2)

	assert.ErrorIs(t, err, ErrConcurrencyConflict)
}
