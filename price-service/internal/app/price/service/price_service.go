package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"berrymarket/pkg/logger"
	"berrymarket/price-service/internal/app/price/entity"
	"berrymarket/price-service/internal/app/price/repository"

	"github.com/google/uuid"
)

// MessagePublisher определяет интерфейс для публикации сообщений в Kafka
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// PriceService ведет журнал цен и рассылает события обновления.
// Запись и публикация составляют одну операцию: ошибка публикации
// проваливает весь запрос, чтобы цена не осталась без события
type PriceService struct {
	priceRepo repository.PriceRepository
	publisher MessagePublisher
}

// NewPriceService создает сервис журнала цен
func NewPriceService(priceRepo repository.PriceRepository, publisher MessagePublisher) *PriceService {
	return &PriceService{
		priceRepo: priceRepo,
		publisher: publisher,
	}
}

// CreatePrice регистрирует новую цену и публикует PriceUpdated.
// Метка времени по умолчанию - текущее UTC время
func (s *PriceService) CreatePrice(ctx context.Context, req *entity.CreatePriceRequest) (*entity.PriceRecord, error) {
	createdAt := time.Now().UTC()
	if req.CreatedAtUtc != nil {
		createdAt = req.CreatedAtUtc.UTC()
	}

	record := entity.NewPriceRecord(req.ProductID, req.Amount, createdAt)

	if err := s.priceRepo.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to insert price record: %w", err)
	}

	event := entity.PriceUpdateEvent{
		ProductID:    record.ProductID,
		Price:        record.Amount,
		CreatedAtUtc: record.CreatedAtUtc,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal price update event: %w", err)
	}

	// Key - ProductID, события по одному товару идут в одну партицию
	if err := s.publisher.PublishMessage(ctx, record.ProductID.String(), payload); err != nil {
		return nil, fmt.Errorf("price recorded but event not published: %w", err)
	}

	logger.Info().
		Str("product_id", record.ProductID.String()).
		Float64("amount", record.Amount).
		Msg("Price recorded, PriceUpdated event published")

	return record, nil
}

// GetPriceHistory возвращает историю цен товара
func (s *PriceService) GetPriceHistory(ctx context.Context, productID uuid.UUID) ([]entity.PriceRecord, error) {
	records, err := s.priceRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}

	return records, nil
}
