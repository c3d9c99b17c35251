package service

import (
	"context"
	"fmt"
	"time"

	"berrymarket/pkg/logger"
	"berrymarket/worker-service/internal/app/worker/repository"
)

// PurgeService физически удаляет строки, мягко удаленные дольше
// периода хранения назад. Запускается по cron расписанию
type PurgeService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	retention   time.Duration
}

// NewPurgeService создает сервис очистки мягко удаленных строк
func NewPurgeService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	retention time.Duration,
) *PurgeService {
	return &PurgeService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		retention:   retention,
	}
}

// PurgeSoftDeleted удаляет просроченные мягко удаленные товары и заказы.
// Заказы удаляются первыми, чтобы не оставлять ссылок на удаленные товары
func (s *PurgeService) PurgeSoftDeleted(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.retention)

	ordersPurged, err := s.orderRepo.PurgeSoftDeleted(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge orders: %w", err)
	}

	productsPurged, err := s.productRepo.PurgeSoftDeleted(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge products: %w", err)
	}

	logger.Info().
		Int64("orders_purged", ordersPurged).
		Int64("products_purged", productsPurged).
		Time("cutoff", cutoff).
		Msg("Soft-deleted rows purged")

	return nil
}
