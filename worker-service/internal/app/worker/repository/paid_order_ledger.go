package repository

import (
	"context"
	"fmt"
	"time"

	"berrymarket/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const paidOrderKeyPrefix = "paid_order:"

// redisPaidOrderLedger хранит пометки об обработанных оплатах в Redis.
// SETNX дает атомарное "кто первый" без блокировок; TTL ограничивает
// рост реестра - повтор доставки позже окна TTL крайне маловероятен
type redisPaidOrderLedger struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPaidOrderLedger создает реестр обработанных оплат
func NewPaidOrderLedger(client *redis.Client, ttl time.Duration) PaidOrderLedger {
	return &redisPaidOrderLedger{
		client: client,
		ttl:    ttl,
	}
}

// MarkIfFirst атомарно помечает заказ обработанным.
// Возвращает true только при первой пометке
func (l *redisPaidOrderLedger) MarkIfFirst(ctx context.Context, orderID uuid.UUID) (bool, error) {
	key := paidOrderKeyPrefix + orderID.String()

	set, err := l.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		metrics.RecordRedisError("worker-service", metrics.RedisOpSetNX)
		return false, fmt.Errorf("failed to mark order %s in ledger: %w", orderID, err)
	}

	return set, nil
}

// Release снимает пометку, чтобы редоставка могла повторить обработку
func (l *redisPaidOrderLedger) Release(ctx context.Context, orderID uuid.UUID) error {
	key := paidOrderKeyPrefix + orderID.String()

	if err := l.client.Del(ctx, key).Err(); err != nil {
		metrics.RecordRedisError("worker-service", metrics.RedisOpDel)
		return fmt.Errorf("failed to release order %s from ledger: %w", orderID, err)
	}

	return nil
}
