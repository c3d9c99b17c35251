package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"berrymarket/worker-service/internal/app/worker/entity"
	"berrymarket/worker-service/internal/app/worker/service"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// OrderPaidHandler обрабатывает события из топика order_paid
type OrderPaidHandler struct {
	stockSvc *service.StockService
}

// NewOrderPaidHandler создает обработчик событий оплаты
func NewOrderPaidHandler(stockSvc *service.StockService) *OrderPaidHandler {
	return &OrderPaidHandler{stockSvc: stockSvc}
}

func (h *OrderPaidHandler) Name() string {
	return "order-paid-stock"
}

// ProcessMessage списывает остаток за оплаченный заказ.
// Конфликт версии строки товара не яд - редоставка повторит списание
func (h *OrderPaidHandler) ProcessMessage(ctx context.Context, message kafka.Message) error {
	var event entity.OrderPaidEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("%w: malformed order paid payload: %v", ErrPoisonMessage, err)
	}

	if event.OrderID == uuid.Nil || event.ProductID == uuid.Nil {
		return fmt.Errorf("%w: order paid event with empty ids", ErrPoisonMessage)
	}

	if err := h.stockSvc.HandleOrderPaid(ctx, &event); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return fmt.Errorf("%w: product %s does not exist", ErrPoisonMessage, event.ProductID)
		}
		return fmt.Errorf("failed to decrement stock for order %s: %w", event.OrderID, err)
	}

	return nil
}
