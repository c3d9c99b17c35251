package service

import (
	"context"
	"fmt"

	"berrymarket/pkg/logger"
	"berrymarket/worker-service/internal/app/worker/entity"
	"berrymarket/worker-service/internal/app/worker/repository"
)

// NotificationService оповещает об изменении цены товара с ожидающими заказами.
// Отправка письма обязана удаться (иначе сообщение будет редоставлено),
// журнальная запись в MongoDB - best-effort
type NotificationService struct {
	orderRepo   repository.OrderRepository
	emailSender EmailSender
	logRepo     repository.NotificationLogRepository
	recipient   string
}

// NewNotificationService создает сервис уведомлений
func NewNotificationService(
	orderRepo repository.OrderRepository,
	emailSender EmailSender,
	logRepo repository.NotificationLogRepository,
	recipient string,
) *NotificationService {
	return &NotificationService{
		orderRepo:   orderRepo,
		emailSender: emailSender,
		logRepo:     logRepo,
		recipient:   recipient,
	}
}

// HandlePriceChanged загружает затронутые заказы и отправляет уведомление.
// Ошибка отправки возвращается вызывающему - сообщение уйдет на редоставку;
// дубликат письма при редоставке - принятый компромисс
func (s *NotificationService) HandlePriceChanged(ctx context.Context, event *entity.ProductPriceChangedEvent) error {
	orders, err := s.orderRepo.GetByIDs(ctx, event.AffectedOrderIDs)
	if err != nil {
		return fmt.Errorf("failed to load affected orders: %w", err)
	}

	if err := s.emailSender.SendPriceChangeNotice(ctx, event, orders); err != nil {
		return fmt.Errorf("failed to send price change notice: %w", err)
	}

	// Журнал не участвует в решении о коммите оффсета
	auditLog := &entity.NotificationLog{
		ProductID: event.ProductID.String(),
		OldPrice:  event.OldPrice,
		NewPrice:  event.NewPrice,
		Recipient: s.recipient,
	}
	for _, id := range event.AffectedOrderIDs {
		auditLog.AffectedOrderIDs = append(auditLog.AffectedOrderIDs, id.String())
	}

	if err := s.logRepo.Insert(ctx, auditLog); err != nil {
		logger.Warn().Err(err).
			Str("product_id", event.ProductID.String()).
			Msg("Failed to write notification log")
	}

	logger.Info().
		Str("product_id", event.ProductID.String()).
		Int("affected_orders", len(event.AffectedOrderIDs)).
		Msg("Price change notice sent")

	return nil
}
