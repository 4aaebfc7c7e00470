package services

import "errors"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrProductNotFound = errors.New("product not found")
	ErrEmptyComment    = errors.New("comment text is empty")
	ErrSearchDisabled  = errors.New("search is not configured")
	ErrMailDisabled    = errors.New("mail is not configured")
	ErrInvalidForm     = errors.New("invalid checkout form")
	ErrOrderFailed     = errors.New("order could not be placed")
	ErrPaymentFailed   = errors.New("payment could not be created")
)
