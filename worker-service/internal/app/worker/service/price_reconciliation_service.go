package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"berrymarket/pkg/logger"
	"berrymarket/pkg/metrics"
	"berrymarket/worker-service/internal/app/worker/entity"
	"berrymarket/worker-service/internal/app/worker/repository"
)

// PriceReconciliationService применяет события обновления цены к каталогу.
// Правило last-writer-wins по метке времени события: применяем только строго
// более новые события, поэтому редоставка и перестановка сообщений внутри
// партиции не откатывают цену назад
type PriceReconciliationService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	publisher   MessagePublisher
}

// NewPriceReconciliationService создает сервис сверки цен
func NewPriceReconciliationService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	publisher MessagePublisher,
) *PriceReconciliationService {
	return &PriceReconciliationService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		publisher:   publisher,
	}
}

// ReconcilePrice сверяет входящее событие с сохраненным товаром.
// Применяет цену только если метка события строго новее updated_at товара;
// равные метки не переприменяются - защита от дубликата того же события
func (s *PriceReconciliationService) ReconcilePrice(ctx context.Context, event *entity.PriceUpdateEvent) (*entity.ReconcileResult, error) {
	product, err := s.productRepo.GetByID(ctx, event.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if !event.CreatedAtUtc.After(product.UpdatedAt) {
		metrics.PriceUpdatesSkipped.WithLabelValues("worker-service").Inc()
		return &entity.ReconcileResult{
			Applied:              false,
			PreviousPrice:        product.Price,
			CurrentPrice:         product.Price,
			ResolvedTimestampUtc: product.UpdatedAt,
		}, nil
	}

	previousPrice := product.Price

	err = s.productRepo.ApplyPriceUpdate(ctx, product.ID, event.Price, event.CreatedAtUtc, product.RowVersion)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repository.ErrConcurrencyConflict):
			// Кто-то успел записать между чтением и записью; редоставка
			// пересверит событие против свежего состояния
			return nil, ErrConcurrencyConflict
		default:
			return nil, fmt.Errorf("failed to apply price update: %w", err)
		}
	}

	metrics.PriceUpdatesApplied.WithLabelValues("worker-service").Inc()

	return &entity.ReconcileResult{
		Applied:              true,
		PreviousPrice:        previousPrice,
		CurrentPrice:         event.Price,
		ResolvedTimestampUtc: event.CreatedAtUtc,
	}, nil
}

// HandlePriceUpdate - полный цикл обработки события из price_updates:
// сверка цены, поиск затронутых ожидающих заказов и, если они есть,
// публикация ProductPriceChanged. Пустой список заказов гасит оповещение
func (s *PriceReconciliationService) HandlePriceUpdate(ctx context.Context, event *entity.PriceUpdateEvent) error {
	result, err := s.ReconcilePrice(ctx, event)
	if err != nil {
		return err
	}

	if !result.Applied {
		logger.Debug().
			Str("product_id", event.ProductID.String()).
			Time("event_ts", event.CreatedAtUtc).
			Time("stored_ts", result.ResolvedTimestampUtc).
			Msg("Stale price update skipped")
		return nil
	}

	affectedIDs, err := s.orderRepo.FindPendingOrderIDs(ctx, event.ProductID)
	if err != nil {
		return fmt.Errorf("failed to find pending orders: %w", err)
	}

	if len(affectedIDs) == 0 {
		logger.Debug().
			Str("product_id", event.ProductID.String()).
			Msg("Price applied, no pending orders affected")
		return nil
	}

	changed := entity.ProductPriceChangedEvent{
		ProductID:        event.ProductID,
		OldPrice:         result.PreviousPrice,
		NewPrice:         result.CurrentPrice,
		UpdatedAtUtc:     result.ResolvedTimestampUtc,
		AffectedOrderIDs: affectedIDs,
	}

	payload, err := json.Marshal(changed)
	if err != nil {
		return fmt.Errorf("failed to marshal price changed event: %w", err)
	}

	// Key - ProductID, чтобы уведомления по товару шли в одну партицию
	if err := s.publisher.PublishMessage(ctx, event.ProductID.String(), payload); err != nil {
		return fmt.Errorf("failed to publish price changed event: %w", err)
	}

	logger.Info().
		Str("product_id", event.ProductID.String()).
		Float64("old_price", result.PreviousPrice).
		Float64("new_price", result.CurrentPrice).
		Int("affected_orders", len(affectedIDs)).
		Msg("Price applied, ProductPriceChanged published")

	return nil
}
