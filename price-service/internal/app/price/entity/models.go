package entity

import (
	"time"

	"github.com/google/uuid"
)

// PriceRecord - запись в журнале цен.
// Журнал append-only: записи не обновляются и не удаляются
type PriceRecord struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	Amount       float64   `json:"amount"`
	CreatedAtUtc time.Time `json:"created_at_utc"`
}

// NewPriceRecord создает запись цены с заданной меткой времени
func NewPriceRecord(productID uuid.UUID, amount float64, createdAtUtc time.Time) *PriceRecord {
	return &PriceRecord{
		ID:           uuid.New(),
		ProductID:    productID,
		Amount:       amount,
		CreatedAtUtc: createdAtUtc,
	}
}

// === DTO ===

// CreatePriceRequest - запрос на регистрацию новой цены.
// CreatedAtUtc опционален - по умолчанию текущее UTC время
type CreatePriceRequest struct {
	ProductID    uuid.UUID  `json:"product_id" validate:"required"`
	Amount       float64    `json:"amount" validate:"required,gt=0,lte=1000000"`
	CreatedAtUtc *time.Time `json:"created_at_utc,omitempty"`
}

// PriceHistoryResponse - история цен товара
type PriceHistoryResponse struct {
	ProductID uuid.UUID     `json:"product_id"`
	Prices    []PriceRecord `json:"prices"`
	Total     int           `json:"total"`
}

// ErrorResponse - стандартный формат ошибки API
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// === СОБЫТИЯ KAFKA ===

// PriceUpdateEvent - событие обновления цены для топика price_updates
type PriceUpdateEvent struct {
	ProductID    uuid.UUID `json:"productId"`
	Price        float64   `json:"price"`
	CreatedAtUtc time.Time `json:"createdAtUtc"`
}
