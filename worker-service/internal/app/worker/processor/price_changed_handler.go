package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"berrymarket/worker-service/internal/app/worker/entity"
	"berrymarket/worker-service/internal/app/worker/service"

	"github.com/segmentio/kafka-go"
)

// PriceChangedHandler обрабатывает события из топика product_price_changed
type PriceChangedHandler struct {
	notificationSvc *service.NotificationService
}

// NewPriceChangedHandler создает обработчик уведомлений об изменении цены
func NewPriceChangedHandler(notificationSvc *service.NotificationService) *PriceChangedHandler {
	return &PriceChangedHandler{notificationSvc: notificationSvc}
}

func (h *PriceChangedHandler) Name() string {
	return "price-changed-notification"
}

// ProcessMessage отправляет уведомление о затронутых заказах.
// Ошибка отправки ведет к редоставке; дубли писем - принятый компромисс
func (h *PriceChangedHandler) ProcessMessage(ctx context.Context, message kafka.Message) error {
	var event entity.ProductPriceChangedEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("%w: malformed price changed payload: %v", ErrPoisonMessage, err)
	}

	if err := h.notificationSvc.HandlePriceChanged(ctx, &event); err != nil {
		return fmt.Errorf("failed to notify for product %s: %w", event.ProductID, err)
	}

	return nil
}
