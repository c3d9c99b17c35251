package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"berrymarket/market-service/internal/app/market/entity"
	"berrymarket/market-service/internal/app/market/repository"
	"berrymarket/pkg/logger"

	"github.com/google/uuid"
)

// OrderService обрабатывает бизнес-логику заказов.
// Владеет переходом pending -> paid и отправкой события OrderPaid
type OrderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	kafkaProducer MessagePublisher
}

// NewOrderService создает новый сервис заказов с внедрением зависимостей
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	kafkaProducer MessagePublisher,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		kafkaProducer: kafkaProducer,
	}
}

// CreateOrder создает новый заказ в статусе pending.
// Товар должен существовать и быть в наличии
func (s *OrderService) CreateOrder(ctx context.Context, req *entity.CreateOrderRequest) (*entity.Order, error) {
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product.Stock <= 0 {
		return nil, ErrProductOutOfStock
	}

	order := &entity.Order{
		Base:          entity.NewBase(),
		ProductID:     product.ID,
		PaymentStatus: entity.PaymentStatusPending,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return order, nil
}

// GetOrder получает заказ по ID
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// GetAllOrders получает все заказы
func (s *OrderService) GetAllOrders(ctx context.Context) ([]entity.Order, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}

	return orders, nil
}

// PayOrder переводит заказ из pending в paid ровно один раз.
// Повторная оплата отклоняется с ErrOrderAlreadyPaid, событие не отправляется.
// После сохранения публикует OrderPaid в Kafka; ошибка публикации
// возвращается вызывающему - успех нельзя рапортовать, если событие
// не передано транспорту
func (s *OrderService) PayOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	// Жесткая защита от повторной команды оплаты, не no-op
	if order.PaymentStatus == entity.PaymentStatusPaid {
		return nil, ErrOrderAlreadyPaid
	}

	now := time.Now().UTC()
	order.PaymentStatus = entity.PaymentStatusPaid
	order.PaidAt = &now

	// Конкурирующая оплата того же заказа проиграет по версии строки
	if err := s.orderRepo.Update(ctx, order, order.RowVersion); err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			return nil, ErrOrderNotFound
		case errors.Is(err, repository.ErrConcurrencyConflict):
			return nil, ErrConcurrencyConflict
		default:
			return nil, fmt.Errorf("failed to save paid order: %w", err)
		}
	}

	// Publish-after-commit: при падении процесса между сохранением и публикацией
	// событие теряется - окно принято
	event := entity.OrderPaidEvent{
		OrderID:   order.ID,
		ProductID: order.ProductID,
	}
	if err := s.publishOrderPaid(ctx, event); err != nil {
		return nil, fmt.Errorf("order %s paid but event not published: %w", order.ID, err)
	}

	logger.Info().
		Str("order_id", order.ID.String()).
		Str("product_id", order.ProductID.String()).
		Msg("Order paid, OrderPaid event published")

	return order, nil
}

// DeleteOrder мягко удаляет заказ
func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID, rowVersion int64) error {
	if err := s.orderRepo.SoftDelete(ctx, id, rowVersion); err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			return ErrOrderNotFound
		case errors.Is(err, repository.ErrConcurrencyConflict):
			return ErrConcurrencyConflict
		default:
			return fmt.Errorf("failed to delete order: %w", err)
		}
	}
	return nil
}

// publishOrderPaid отправляет событие OrderPaid в Kafka
// Key - OrderID для партиционирования по заказу
func (s *OrderService) publishOrderPaid(ctx context.Context, event entity.OrderPaidEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order paid event: %w", err)
	}

	if err := s.kafkaProducer.PublishMessage(ctx, event.OrderID.String(), eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}
