package entity

import (
	"time"

	"github.com/google/uuid"
)

// Base содержит общие поля всех сущностей:
// идентификатор, таймстемпы, мягкое удаление и версию строки
// для оптимистичной блокировки
type Base struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt  time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"not null"` // Логические часы для упорядочивания обновлений цены
	IsDeleted  bool       `json:"-" gorm:"not null;default:false"`
	DeletedAt  *time.Time `json:"-"`
	RowVersion int64      `json:"row_version" gorm:"not null;default:1"` // Инкрементируется при каждой записи
}

// NewBase создает базовые поля для новой сущности
func NewBase() Base {
	now := time.Now().UTC()
	return Base{
		ID:         uuid.New(),
		CreatedAt:  now,
		UpdatedAt:  now,
		RowVersion: 1,
	}
}

// Category представляет категорию товаров
type Category struct {
	Base
	Name        string `json:"name" gorm:"type:varchar(100);not null"`
	Description string `json:"description" gorm:"type:varchar(500)"`
}

// TableName указывает имя таблицы для GORM
func (Category) TableName() string {
	return "categories"
}

// Product представляет товар в каталоге
type Product struct {
	Base
	Name        string    `json:"name" gorm:"type:varchar(150);not null"`
	Description string    `json:"description" gorm:"type:varchar(1000)"`
	Price       float64   `json:"price" gorm:"type:decimal(12,2);not null"` // 0.01 .. 1_000_000
	Stock       int       `json:"stock" gorm:"not null"`                    // 0 .. 1_000_000
	CategoryID  uuid.UUID `json:"category_id" gorm:"type:uuid;not null"`
	Category    *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// TableName указывает имя таблицы для GORM
func (Product) TableName() string {
	return "products"
}

// Границы валидации товара
const (
	MinPrice = 0.01
	MaxPrice = 1_000_000
	MaxStock = 1_000_000
)

// PaymentStatus представляет статус оплаты заказа
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending" // Ожидает оплаты
	PaymentStatusPaid    PaymentStatus = "paid"    // Оплачен (терминальный статус)
)

// Order представляет заказ на один товар
type Order struct {
	Base
	ProductID     uuid.UUID     `json:"product_id" gorm:"type:uuid;not null"`
	Product       *Product      `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(50);not null;default:'pending'"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"` // Устанавливается только при переходе в paid
}

// TableName указывает имя таблицы для GORM
func (Order) TableName() string {
	return "orders"
}

// OrderPaidEvent отправляется в топик order_paid после оплаты заказа.
// Key сообщения - OrderID для партиционирования
type OrderPaidEvent struct {
	OrderID   uuid.UUID `json:"orderId"`
	ProductID uuid.UUID `json:"productId"`
}
