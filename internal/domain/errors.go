package domain

import (
	"errors"
	"fmt"
)

// Error classes. Handlers map them to HTTP statuses with errors.Is; anything
// that matches none of them is treated as a storage failure.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

var (
	ErrCartEmpty         = fmt.Errorf("%w: cart is empty", ErrValidation)
	ErrIncompleteAddress = fmt.Errorf("%w: delivery address requires city, street and house", ErrValidation)
	ErrInvalidStatus     = fmt.Errorf("%w: invalid status value", ErrValidation)
	ErrQuantityTooLarge  = fmt.Errorf("%w: quantity per product must not exceed %d", ErrValidation, MaxLineQuantity)
	ErrOrderTooLarge     = fmt.Errorf("%w: order total exceeds %s", ErrValidation, MaxOrderTotal.StringFixed(2))
	ErrStatusTransition  = fmt.Errorf("%w: status transition not allowed", ErrConflict)

	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)

	ErrCategoryInUse  = fmt.Errorf("%w: category still has products", ErrValidation)
	ErrDuplicateUser  = fmt.Errorf("%w: login or email already registered", ErrConflict)
	ErrBadCredentials = fmt.Errorf("%w: invalid login or password", ErrUnauthenticated)
)

func Invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
