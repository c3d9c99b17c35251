package service

import (
	"context"
	"errors"
	"fmt"

	"berrymarket/pkg/logger"
	"berrymarket/worker-service/internal/app/worker/entity"
	"berrymarket/worker-service/internal/app/worker/repository"
)

// StockService списывает остаток товара при оплате заказа.
// Идемпотентность обеспечивает реестр обработанных оплат: редоставка
// того же order_paid не списывает остаток второй раз
type StockService struct {
	productRepo repository.ProductRepository
	ledger      repository.PaidOrderLedger
}

// NewStockService создает сервис списания остатков
func NewStockService(
	productRepo repository.ProductRepository,
	ledger repository.PaidOrderLedger,
) *StockService {
	return &StockService{
		productRepo: productRepo,
		ledger:      ledger,
	}
}

// HandleOrderPaid списывает единицу остатка за оплаченный заказ.
// Повторная доставка события пропускается по реестру
func (s *StockService) HandleOrderPaid(ctx context.Context, event *entity.OrderPaidEvent) error {
	first, err := s.ledger.MarkIfFirst(ctx, event.OrderID)
	if err != nil {
		return fmt.Errorf("failed to check paid order ledger: %w", err)
	}

	if !first {
		logger.Info().
			Str("order_id", event.OrderID.String()).
			Msg("Duplicate order_paid delivery, stock decrement skipped")
		return nil
	}

	if err := s.productRepo.DecrementStock(ctx, event.ProductID); err != nil {
		// Снимаем пометку, чтобы редоставка могла повторить списание
		if releaseErr := s.ledger.Release(ctx, event.OrderID); releaseErr != nil {
			logger.Error().Err(releaseErr).
				Str("order_id", event.OrderID.String()).
				Msg("Failed to release ledger mark after decrement failure")
		}

		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	logger.Info().
		Str("order_id", event.OrderID.String()).
		Str("product_id", event.ProductID.String()).
		Msg("Stock decremented for paid order")

	return nil
}
