package entity

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// === МОДЕЛИ БД ===
// Worker работает с теми же таблицами products и orders, что и market-service

// PaymentStatus - статус оплаты заказа
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Product - товар каталога (только поля, нужные worker'у)
type Product struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(150)" json:"name"`
	Price      float64   `gorm:"type:decimal(12,2)" json:"price"`
	Stock      int       `gorm:"not null" json:"stock"`
	UpdatedAt  time.Time `json:"updated_at"`
	IsDeleted  bool      `gorm:"not null;default:false" json:"-"`
	RowVersion int64     `gorm:"not null;default:1" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// Order - заказ (только поля, нужные worker'у)
type Order struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID     uuid.UUID     `gorm:"type:uuid;not null" json:"product_id"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
	IsDeleted     bool          `gorm:"not null;default:false" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}

// === СОБЫТИЯ KAFKA ===

// PriceUpdateEvent - событие обновления цены из топика price_updates
type PriceUpdateEvent struct {
	ProductID    uuid.UUID `json:"productId"`
	Price        float64   `json:"price"`
	CreatedAtUtc time.Time `json:"createdAtUtc"`
}

// ProductPriceChangedEvent - событие изменения цены товара, затронувшего
// ожидающие оплаты заказы. Публикуется в топик product_price_changed
type ProductPriceChangedEvent struct {
	ProductID        uuid.UUID   `json:"productId"`
	OldPrice         float64     `json:"oldPrice"`
	NewPrice         float64     `json:"newPrice"`
	UpdatedAtUtc     time.Time   `json:"updatedAtUtc"`
	AffectedOrderIDs []uuid.UUID `json:"affectedOrderIds"`
}

// OrderPaidEvent - событие оплаты заказа из топика order_paid
type OrderPaidEvent struct {
	OrderID   uuid.UUID `json:"orderId"`
	ProductID uuid.UUID `json:"productId"`
}

// === РЕЗУЛЬТАТЫ ===

// ReconcileResult - результат сверки цены.
// Applied = false означает, что событие устарело и товар не трогали;
// Previous/Current в этом случае отражают сохраненные значения
type ReconcileResult struct {
	Applied              bool
	PreviousPrice        float64
	CurrentPrice         float64
	ResolvedTimestampUtc time.Time
}

// === ДОКУМЕНТЫ MONGODB ===

// NotificationLog - журнальная запись об отправленном уведомлении.
// Пишется best-effort после отправки письма
type NotificationLog struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	ProductID        string             `bson:"product_id"`
	OldPrice         float64            `bson:"old_price"`
	NewPrice         float64            `bson:"new_price"`
	AffectedOrderIDs []string           `bson:"affected_order_ids"`
	Recipient        string             `bson:"recipient"`
	SentAt           time.Time          `bson:"sent_at"`
}
