package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"berrymarket/market-service/internal/app/market/entity"
	"berrymarket/market-service/internal/app/market/service"
	"berrymarket/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// respondError отправляет JSON с ошибкой
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, entity.ErrorResponse{Error: message})
}

// respondServiceError мапит ошибки бизнес-логики на HTTP статусы:
// NotFound -> 404, конфликт домена / версии строки -> 409,
// все остальное -> 500 с correlation id в логе и ответе
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrOrderAlreadyPaid),
		errors.Is(err, service.ErrProductOutOfStock):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrConcurrencyConflict):
		respondError(c, http.StatusConflict, "stale row version, reload and retry")
	default:
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
}

// formatValidationError формирует читаемое сообщение об ошибке валидации
func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
		}
		return "validation failed: " + strings.Join(fields, ", ")
	}
	return "validation failed"
}

// parseRowVersion извлекает обязательный query параметр row_version для DELETE
func parseRowVersion(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.Query("row_version"))
	if raw == "" {
		respondError(c, http.StatusBadRequest, "row_version query parameter is required")
		return 0, false
	}

	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || version <= 0 {
		respondError(c, http.StatusBadRequest, "row_version must be a positive integer")
		return 0, false
	}

	return version, true
}
