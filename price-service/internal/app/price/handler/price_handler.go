package handler

import (
	"errors"
	"net/http"

	"berrymarket/pkg/logger"
	"berrymarket/price-service/internal/app/price/entity"
	"berrymarket/price-service/internal/app/price/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PriceHandler обрабатывает HTTP запросы журнала цен
type PriceHandler struct {
	priceService *service.PriceService
	validate     *validator.Validate
}

// NewPriceHandler создает новый обработчик цен
func NewPriceHandler(priceService *service.PriceService) *PriceHandler {
	return &PriceHandler{
		priceService: priceService,
		validate:     validator.New(),
	}
}

// CreatePrice обрабатывает POST /prices
func (h *PriceHandler) CreatePrice(c *gin.Context) {
	var req entity.CreatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ProductID == uuid.Nil {
		respondError(c, http.StatusBadRequest, "product_id is required")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	record, err := h.priceService.CreatePrice(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// GetPriceHistory обрабатывает GET /prices/:productId
func (h *PriceHandler) GetPriceHistory(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid product id")
		return
	}

	records, err := h.priceService.GetPriceHistory(c.Request.Context(), productID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.PriceHistoryResponse{
		ProductID: productID,
		Prices:    records,
		Total:     len(records),
	})
}

// respondError отправляет JSON с ошибкой
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, entity.ErrorResponse{Error: message})
}

// respondServiceError мапит ошибки сервиса на HTTP статусы.
// Неклассифицированная ошибка логируется с correlation id
func respondServiceError(c *gin.Context, err error) {
	correlationID := uuid.NewString()
	logger.Error().
		Str("correlation_id", correlationID).
		Str("path", c.Request.URL.Path).
		Err(err).
		Msg("Unhandled service error")
	c.JSON(http.StatusInternalServerError, entity.ErrorResponse{
		Error:         "internal server error",
		CorrelationID: correlationID,
	})
}

// formatValidationError формирует читаемое сообщение об ошибке валидации
func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		message := "validation failed:"
		for _, fe := range validationErrors {
			message += " " + fe.Field() + " (" + fe.Tag() + ")"
		}
		return message
	}
	return "validation failed"
}
