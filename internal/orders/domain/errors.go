package domain

import "errors"

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrForbidden is returned when the caller may not act on the order.
	ErrForbidden = errors.New("forbidden")

	ErrNoLineItems    = errors.New("order has no line items")
	ErrPartIDRequired = errors.New("part id is required")
	ErrQuantityTooLow = errors.New("quantity must be at least 1")

	// ErrUnknownParts is returned when fewer parts resolve than were requested.
	ErrUnknownParts = errors.New("one or more parts do not exist")

	// ErrOutOfStock is returned when a shortfall has no delivery date to estimate against.
	ErrOutOfStock = errors.New("out of stock with no delivery date")

	ErrAlreadyPaid      = errors.New("order already paid")
	ErrAlreadyCancelled = errors.New("order already cancelled")
	ErrAlreadyShipped   = errors.New("order already shipped or delivered")
)
