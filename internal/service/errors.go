package service

import "errors"

var (
	ErrNotAuthenticated = errors.New("user not authenticated")
	ErrCartLoadFailed   = errors.New("failed to load cart")
	ErrEmptyCart        = errors.New("cart is empty, nothing to checkout")
	ErrOrderPersistence = errors.New("failed to create order")
	ErrOrderAlreadyPaid = errors.New("order is already paid")
)
