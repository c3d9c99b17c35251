package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"berrymarket/pkg/logger"
	"berrymarket/price-service/internal/app/price/entity"
	"berrymarket/price-service/internal/app/price/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter("price-service-test", "error", io.Discard)
	os.Exit(m.Run())
}

func TestPriceService_CreatePrice_Success(t *testing.T) {
	// Arrange
	priceRepo := new(mocks.MockPriceRepository)
	publisher := new(mocks.MockMessagePublisher)
	priceService := NewPriceService(priceRepo, publisher)

	productID := uuid.New()
	req := &entity.CreatePriceRequest{
		ProductID: productID,
		Amount:    149.90,
	}

	priceRepo.On("Insert", mock.Anything, mock.AnythingOfType("*entity.PriceRecord")).Return(nil)
	publisher.On("PublishMessage", mock.Anything, productID.String(), mock.Anything).Return(nil)

	before := time.Now().UTC()

	// Act
	record, err := priceService.CreatePrice(context.Background(), req)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.Equal(t, productID, record.ProductID)
	assert.Equal(t, 149.90, record.Amount)
	// Метка времени по умолчанию - момент вызова в UTC
	assert.False(t, record.CreatedAtUtc.Before(before))
	assert.False(t, record.CreatedAtUtc.After(time.Now().UTC()))

	priceRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestPriceService_CreatePrice_PublishesEventKeyedByProduct(t *testing.T) {
	// Arrange
	priceRepo := new(mocks.MockPriceRepository)
	publisher := new(mocks.MockMessagePublisher)
	priceService := NewPriceService(priceRepo, publisher)

	productID := uuid.New()
	createdAt := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	req := &entity.CreatePriceRequest{
		ProductID:    productID,
		Amount:       99.50,
		CreatedAtUtc: &createdAt,
	}

	priceRepo.On("Insert", mock.Anything, mock.AnythingOfType("*entity.PriceRecord")).Return(nil)
	publisher.On("PublishMessage", mock.Anything, productID.String(), mock.Anything).Return(nil)

	// Act
	record, err := priceService.CreatePrice(context.Background(), req)

	// Assert
	require.NoError(t, err)
	assert.True(t, record.CreatedAtUtc.Equal(createdAt))

	payload := publisher.Calls[0].Arguments.Get(2).([]byte)
	var event entity.PriceUpdateEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, productID, event.ProductID)
	assert.Equal(t, 99.50, event.Price)
	assert.True(t, event.CreatedAtUtc.Equal(createdAt))

	// Проверяем camelCase имена полей на проводе
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &raw))
	assert.Contains(t, raw, "productId")
	assert.Contains(t, raw, "price")
	assert.Contains(t, raw, "createdAtUtc")
}

func TestPriceService_CreatePrice_ExplicitTimestampNormalizedToUTC(t *testing.T) {
	// Arrange
	priceRepo := new(mocks.MockPriceRepository)
	publisher := new(mocks.MockMessagePublisher)
	priceService := NewPriceService(priceRepo, publisher)

	loc := time.FixedZone("MSK", 3*60*60)
	local := time.Date(2025, 6, 1, 15, 30, 0, 0, loc)
	req := &entity.CreatePriceRequest{
		ProductID:    uuid.New(),
		Amount:       10.0,
		CreatedAtUtc: &local,
	}

	priceRepo.On("Insert", mock.Anything, mock.AnythingOfType("*entity.PriceRecord")).Return(nil)
	publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	// Act
	record, err := priceService.CreatePrice(context.Background(), req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, time.UTC, record.CreatedAtUtc.Location())
	assert.True(t, record.CreatedAtUtc.Equal(local))
}

func TestPriceService_CreatePrice_InsertError(t *testing.T) {
	// Arrange
	priceRepo := new(mocks.MockPriceRepository)
	publisher := new(mocks.MockMessagePublisher)
	priceService := NewPriceService(priceRepo, publisher)

	req := &entity.CreatePriceRequest{
		ProductID: uuid.New(),
		Amount:    50.0,
	}

	priceRepo.On("Insert", mock.Anything, mock.AnythingOfType("*entity.PriceRecord")).
		Return(errors.New("connection refused"))

	// Act
	record, err := priceService.CreatePrice(context.Background(), req)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, record)
	// При ошибке записи событие не публикуется
	publisher.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestPriceService_CreatePrice_PublishFailureFailsRequest(t *testing.T) {
	// Arrange
	priceRepo := new(mocks.MockPriceRepository)
	publisher := new(mocks.MockMessagePublisher)
	priceService := NewPriceService(priceRepo, publisher)

	req := &entity.CreatePriceRequest{
		ProductID: uuid.New(),
		Amount:    75.0,
	}

	priceRepo.On("Insert", mock.Anything, mock.AnythingOfType("*entity.PriceRecord")).Return(nil)
	publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("kafka unavailable"))

	// Act
	record, err := priceService.CreatePrice(context.Background(), req)

	// Assert
	require.Error(t, err)
	assert.Nil(t, record)
	assert.Contains(t, err.Error(), "event not published")
}

func TestPriceService_GetPriceHistory_Success(t *testing.T) {
	// Arrange
	priceRepo := new(mocks.MockPriceRepository)
	publisher := new(mocks.MockMessagePublisher)
	priceService := NewPriceService(priceRepo, publisher)

	productID := uuid.New()
	now := time.Now().UTC()
	records := []entity.PriceRecord{
		{ID: uuid.New(), ProductID: productID, Amount: 120.0, CreatedAtUtc: now},
		{ID: uuid.New(), ProductID: productID, Amount: 100.0, CreatedAtUtc: now.Add(-time.Hour)},
	}

	priceRepo.On("GetByProductID", mock.Anything, productID).Return(records, nil)

	// Act
	result, err := priceService.GetPriceHistory(context.Background(), productID)

	// Assert
	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, 120.0, result[0].Amount)
	priceRepo.AssertExpectations(t)
}

func TestPriceService_GetPriceHistory_Empty(t *testing.T) {
	// Arrange
	priceRepo := new(mocks.MockPriceRepository)
	publisher := new(mocks.MockMessagePublisher)
	priceService := NewPriceService(priceRepo, publisher)

	productID := uuid.New()
	priceRepo.On("GetByProductID", mock.Anything, productID).Return([]entity.PriceRecord{}, nil)

	// Act
	result, err := priceService.GetPriceHistory(context.Background(), productID)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestPriceService_GetPriceHistory_RepositoryError(t *testing.T) {
	// Arrange
	priceRepo := new(mocks.MockPriceRepository)
	publisher := new(mocks.MockMessagePublisher)
	priceService := NewPriceService(priceRepo, publisher)

	productID := uuid.New()
	priceRepo.On("GetByProductID", mock.Anything, productID).
		Return(nil, errors.New("query timeout"))

	// Act
	result, err := priceService.GetPriceHistory(context.Background(), productID)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
}
