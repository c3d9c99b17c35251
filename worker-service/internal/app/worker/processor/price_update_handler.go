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

// PriceUpdateHandler обрабатывает события из топика price_updates
type PriceUpdateHandler struct {
	reconciliationSvc *service.PriceReconciliationService
}

// NewPriceUpdateHandler создает обработчик событий обновления цены
func NewPriceUpdateHandler(reconciliationSvc *service.PriceReconciliationService) *PriceUpdateHandler {
	return &PriceUpdateHandler{reconciliationSvc: reconciliationSvc}
}

func (h *PriceUpdateHandler) Name() string {
	return "price-update"
}

// ProcessMessage сверяет цену и при применении оповещает о затронутых заказах.
// Битый payload и несуществующий товар - яд, остальные ошибки редоставляются
func (h *PriceUpdateHandler) ProcessMessage(ctx context.Context, message kafka.Message) error {
	var event entity.PriceUpdateEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("%w: malformed price update payload: %v", ErrPoisonMessage, err)
	}

	if event.ProductID == uuid.Nil {
		return fmt.Errorf("%w: price update without product id", ErrPoisonMessage)
	}

	if err := h.reconciliationSvc.HandlePriceUpdate(ctx, &event); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return fmt.Errorf("%w: product %s does not exist", ErrPoisonMessage, event.ProductID)
		}
		return fmt.Errorf("failed to handle price update for product %s: %w", event.ProductID, err)
	}

	return nil
}
