package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"berrymarket/market-service/internal/app/market/entity"
	"berrymarket/market-service/internal/app/market/repository"
	"berrymarket/market-service/internal/app/market/repository/mocks"
	"berrymarket/market-service/internal/app/market/service"
	"berrymarket/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMain(m *testing.M) {
	logger.InitWithWriter("market-service-test", "error", io.Discard)
	os.Exit(m.Run())
}

func setupOrderHandler() (*OrderHandler, *mocks.MockOrderRepository, *mocks.MockProductRepository, *mocks.MockMessagePublisher) {
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	producer := new(mocks.MockMessagePublisher)

	orderService := service.NewOrderService(orderRepo, productRepo, producer)
	handler := NewOrderHandler(orderService)

	return handler, orderRepo, productRepo, producer
}

func newStoredProduct() *entity.Product {
	return &entity.Product{
		Base:       entity.NewBase(),
		Name:       "Клубника",
		Price:      350.00,
		Stock:      12,
		CategoryID: uuid.New(),
	}
}

func newStoredOrder(productID uuid.UUID, status entity.PaymentStatus) *entity.Order {
	return &entity.Order{
		Base:          entity.NewBase(),
		ProductID:     productID,
		PaymentStatus: status,
	}
}

func TestOrderHandler_CreateOrder_Success(t *testing.T) {
	// Arrange
	handler, orderRepo, productRepo, _ := setupOrderHandler()

	product := newStoredProduct()
	productRepo.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	orderRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Order")).Return(nil)

	reqBody := entity.CreateOrderRequest{ProductID: product.ID}
	body, _ := json.Marshal(reqBody)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// Act
	handler.CreateOrder(c)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)

	var response entity.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, product.ID, response.ProductID)
	assert.Equal(t, entity.PaymentStatusPending, response.PaymentStatus)
	assert.Nil(t, response.PaidAt)
}

func TestOrderHandler_CreateOrder_ProductNotFound(t *testing.T) {
	// Arrange
	handler, _, productRepo, _ := setupOrderHandler()

	productID := uuid.New()
	productRepo.On("GetByID", mock.Anything, productID).Return(nil, repository.ErrProductNotFound)

	reqBody := entity.CreateOrderRequest{ProductID: productID}
	body, _ := json.Marshal(reqBody)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// Act
	handler.CreateOrder(c)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderHandler_CreateOrder_OutOfStock(t *testing.T) {
	// Arrange
	handler, orderRepo, productRepo, _ := setupOrderHandler()

	product := newStoredProduct()
	product.Stock = 0
	productRepo.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	reqBody := entity.CreateOrderRequest{ProductID: product.ID}
	body, _ := json.Marshal(reqBody)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// Act
	handler.CreateOrder(c)

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)
	orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderHandler_PayOrder_Success(t *testing.T) {
	// Arrange
	handler, orderRepo, _, producer := setupOrderHandler()

	order := newStoredOrder(uuid.New(), entity.PaymentStatusPending)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	orderRepo.On("Update", mock.Anything, mock.AnythingOfType("*entity.Order"), mock.Anything).Return(nil)
	producer.On("PublishMessage", mock.Anything, order.ID.String(), mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/orders/"+order.ID.String()+"/pay", nil)
	c.Params = gin.Params{{Key: "id", Value: order.ID.String()}}

	// Act
	handler.PayOrder(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, entity.PaymentStatusPaid, response.PaymentStatus)
	require.NotNil(t, response.PaidAt)
	producer.AssertExpectations(t)
}

func TestOrderHandler_PayOrder_AlreadyPaidReturnsConflict(t *testing.T) {
	// Arrange
	handler, orderRepo, _, producer := setupOrderHandler()

	paidAt := time.Now().UTC().Add(-time.Hour)
	order := newStoredOrder(uuid.New(), entity.PaymentStatusPaid)
	order.PaidAt = &paidAt
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/orders/"+order.ID.String()+"/pay", nil)
	c.Params = gin.Params{{Key: "id", Value: order.ID.String()}}

	// Act
	handler.PayOrder(c)

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)
	producer.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderHandler_PayOrder_InvalidID(t *testing.T) {
	// Arrange
	handler, _, _, _ := setupOrderHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/orders/bad-id/pay", nil)
	c.Params = gin.Params{{Key: "id", Value: "bad-id"}}

	// Act
	handler.PayOrder(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_PayOrder_PublishFailureReturns500(t *testing.T) {
	// Arrange
	handler, orderRepo, _, producer := setupOrderHandler()

	order := newStoredOrder(uuid.New(), entity.PaymentStatusPending)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	orderRepo.On("Update", mock.Anything, mock.AnythingOfType("*entity.Order"), mock.Anything).Return(nil)
	producer.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/orders/"+order.ID.String()+"/pay", nil)
	c.Params = gin.Params{{Key: "id", Value: order.ID.String()}}

	// Act
	handler.PayOrder(c)

	// Assert
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response entity.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response.CorrelationID)
}

func TestOrderHandler_GetAllOrders_Success(t *testing.T) {
	// Arrange
	handler, orderRepo, _, _ := setupOrderHandler()

	orders := []entity.Order{
		*newStoredOrder(uuid.New(), entity.PaymentStatusPending),
		*newStoredOrder(uuid.New(), entity.PaymentStatusPaid),
	}
	orderRepo.On("GetAll", mock.Anything).Return(orders, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/orders", nil)

	// Act
	handler.GetAllOrders(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.OrderListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Total)
}

func TestOrderHandler_DeleteOrder_MissingRowVersion(t *testing.T) {
	// Arrange
	handler, orderRepo, _, _ := setupOrderHandler()

	orderID := uuid.New()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/orders/"+orderID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: orderID.String()}}

	// Act
	handler.DeleteOrder(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	orderRepo.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderHandler_DeleteOrder_StaleRowVersion(t *testing.T) {
	// Arrange
	handler, orderRepo, _, _ := setupOrderHandler()

	orderID := uuid.New()
	orderRepo.On("SoftDelete", mock.Anything, orderID, int64(2)).Return(repository.ErrConcurrencyConflict)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/orders/"+orderID.String()+"?row_version=2", nil)
	c.Params = gin.Params{{Key: "id", Value: orderID.String()}}

	// Act
	handler.DeleteOrder(c)

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)
}
