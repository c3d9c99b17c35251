package service

import "errors"

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrConcurrencyConflict = errors.New("concurrent modification detected")
)
