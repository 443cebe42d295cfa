package models

import (
	"errors"
	"fmt"
)

// Domain errors. All of them are recoverable: handlers map them to a
// 4xx response and the caller can retry with corrected input.
var (
	// ErrInvalidState: illegal status transition, or mutation of a non-draft invoice.
	ErrInvalidState = errors.New("invoice is not in draft state")

	// ErrInvalidQuantity: zero or negative quantity on a line or movement.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrDuplicateLine: same product twice on one invoice.
	ErrDuplicateLine = errors.New("product already present on this invoice")

	// ErrNegativeStock: a quantity adjustment would drive stock below zero.
	ErrNegativeStock = errors.New("stock quantity cannot go below zero")

	// ErrUniquenessViolation: duplicate invoice number or SKU at persistence time.
	ErrUniquenessViolation = errors.New("uniqueness violation")

	// ErrProtectedReference: delete blocked while rows still reference the record.
	ErrProtectedReference = errors.New("record is referenced and cannot be deleted")
)

// InsufficientStockError names the first product whose on-hand quantity
// cannot cover an expense invoice line.
type InsufficientStockError struct {
	ProductId   int
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// IsInsufficientStock reports whether err is an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
