package shop

import (
	"errors"
	"fmt"
)

// Caller-facing error taxonomy. Engines return these (possibly wrapped) and
// roll their transaction back, so none of them ever implies partial mutation.
var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidCart     = errors.New("invalid cart")
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
)

// ProductUnavailableError covers a product that is missing, inactive, or
// fails one of the cart engine's advisory stock checks. Available is only
// meaningful when Insufficient is set.
type ProductUnavailableError struct {
	ProductID    int64
	Insufficient bool
	Available    int
}

func (e *ProductUnavailableError) Error() string {
	if e.Insufficient {
		return fmt.Sprintf("product %d: insufficient stock, available %d", e.ProductID, e.Available)
	}
	return fmt.Sprintf("product %d not found or inactive", e.ProductID)
}

// OutOfStockError is checkout's authoritative stock failure. It names the
// first offending product and the stock observed under lock.
type OutOfStockError struct {
	ProductID   int64
	ProductName string
	Available   int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("no stock for %q: available %d", e.ProductName, e.Available)
}
