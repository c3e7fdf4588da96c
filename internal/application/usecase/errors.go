package usecase

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotAuthenticated   = errors.New("usecase: not authenticated")
	ErrForbidden          = errors.New("usecase: forbidden")
	ErrInvalidArgument    = errors.New("usecase: invalid argument")
	ErrEmptyCart          = errors.New("usecase: cart is empty")
	ErrProductUnavailable = errors.New("usecase: product unavailable")
	ErrPersistence        = errors.New("usecase: persistence failure")

	// ErrCartNotCleared is returned together with a successful CheckoutResult
	// when the order was stored but the cart could not be emptied.
	ErrCartNotCleared = errors.New("usecase: order placed but cart not cleared")
)

// ProductUnavailableError lists the products that no longer resolve.
type ProductUnavailableError struct {
	ProductIDs []string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrProductUnavailable, strings.Join(e.ProductIDs, ", "))
}

func (e *ProductUnavailableError) Is(target error) bool {
	return target == ErrProductUnavailable
}

// PersistenceError wraps a backing store failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Op, e.Err)
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
