package order

import "errors"

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderIDExhausted = errors.New("could not generate a free order id")
	ErrInvalidInput     = errors.New("invalid order input")
	ErrAddressRequired  = errors.New("address is required for shipping")
)
