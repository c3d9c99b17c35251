package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrCategoryNotFound    = errors.New("category not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderAlreadyPaid    = errors.New("order has already been paid")
	ErrProductOutOfStock   = errors.New("product is out of stock")
	ErrConcurrencyConflict = errors.New("row version conflict")
)
