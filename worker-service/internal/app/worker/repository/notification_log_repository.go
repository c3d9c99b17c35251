package repository

import (
	"context"
	"fmt"
	"time"

	"berrymarket/pkg/logger"
	"berrymarket/worker-service/internal/app/worker/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type notificationLogRepository struct {
	collection *mongo.Collection
}

// NewNotificationLogRepository создает журнал уведомлений в MongoDB.
// Автоматически создает индекс по product_id для выборки истории по товару
func NewNotificationLogRepository(db *mongo.Database) NotificationLogRepository {
	collection := db.Collection("notification_logs")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "product_id", Value: 1},
		},
		Options: options.Index().SetName("product_id_idx"),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		// Индекс может уже существовать, работу не прерываем
		logger.Warn().Err(err).Msg("Failed to create index on product_id")
	}

	return &notificationLogRepository{
		collection: collection,
	}
}

// Insert записывает отправленное уведомление в журнал
func (r *notificationLogRepository) Insert(ctx context.Context, log *entity.NotificationLog) error {
	if log.SentAt.IsZero() {
		log.SentAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to insert notification log: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		log.ID = oid
	}

	return nil
}

// GetByProductID получает историю уведомлений по товару
func (r *notificationLogRepository) GetByProductID(ctx context.Context, productID string) ([]entity.NotificationLog, error) {
	filter := bson.M{"product_id": productID}
	opts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find notification logs: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []entity.NotificationLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode notification logs: %w", err)
	}

	return logs, nil
}
