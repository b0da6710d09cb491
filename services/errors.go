package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidArgument   = errors.New("invalid argument")

	// ErrNoUnpaidItems is the InvalidState raised by a checkout with nothing
	// left to pay.
	ErrNoUnpaidItems = fmt.Errorf("%w: order has no unpaid items", ErrInvalidState)
)
