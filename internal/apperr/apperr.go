// Package apperr holds the error kinds shared by the storefront components.
// Callers wrap them with fmt.Errorf("...: %w") and match with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnavailable        = errors.New("dish unavailable")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrMissingAddress     = errors.New("delivery address missing")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrIndexOutOfRange    = errors.New("cart index out of range")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)
