package entity

import "github.com/google/uuid"

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type UpdateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
	RowVersion  int64  `json:"row_version" validate:"required,gt=0"`
}

type CreateProductRequest struct {
	Name        string    `json:"name" validate:"required,min=2,max=150"`
	Description string    `json:"description" validate:"max=1000"`
	Price       float64   `json:"price" validate:"required,gte=0.01,lte=1000000"`
	Stock       int       `json:"stock" validate:"gte=0,lte=1000000"`
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
}

type UpdateProductRequest struct {
	Name        string    `json:"name" validate:"omitempty,min=2,max=150"`
	Description string    `json:"description" validate:"max=1000"`
	Price       float64   `json:"price" validate:"omitempty,gte=0.01,lte=1000000"`
	Stock       *int      `json:"stock" validate:"omitempty,gte=0,lte=1000000"`
	CategoryID  uuid.UUID `json:"category_id" validate:"omitempty"`
	RowVersion  int64     `json:"row_version" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

type CategoryListResponse struct {
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
}

type ProductListResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

type OrderListResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
}
