package repository

import (
	"context"
	"fmt"

	"berrymarket/price-service/internal/app/price/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type priceRepository struct {
	db *pgxpool.Pool
}

// NewPriceRepository создает новый репозиторий журнала цен
func NewPriceRepository(db *pgxpool.Pool) PriceRepository {
	return &priceRepository{db: db}
}

// Insert добавляет запись цены в журнал
func (r *priceRepository) Insert(ctx context.Context, record *entity.PriceRecord) error {
	query := `
		INSERT INTO prices (id, product_id, amount, created_at_utc)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(
		ctx, query,
		record.ID, record.ProductID, record.Amount, record.CreatedAtUtc,
	)

	if err != nil {
		return fmt.Errorf("failed to insert price record: %w", err)
	}

	return nil
}

// GetByProductID получает историю цен товара, новые записи первыми
func (r *priceRepository) GetByProductID(ctx context.Context, productID uuid.UUID) ([]entity.PriceRecord, error) {
	query := `
		SELECT id, product_id, amount, created_at_utc
		FROM prices
		WHERE product_id = $1
		ORDER BY created_at_utc DESC
	`

	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query price records: %w", err)
	}
	defer rows.Close()

	var records []entity.PriceRecord
	for rows.Next() {
		var record entity.PriceRecord
		err := rows.Scan(
			&record.ID,
			&record.ProductID,
			&record.Amount,
			&record.CreatedAtUtc,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price records: %w", err)
	}

	return records, nil
}
