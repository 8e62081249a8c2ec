package service

import (
	"errors"
	"fmt"

	"github.com/flicky/go-bookstore-api/internal/model"
)

// Error classes. Every domain error below wraps exactly one of them so
// callers can map by class with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrForbidden     = errors.New("forbidden")
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrNoEmployeeAvailable = errors.New("no employee available to handle the order")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

var (
	ErrBookNotFound     = fmt.Errorf("book %w", ErrNotFound)
	ErrClientNotFound   = fmt.Errorf("client %w", ErrNotFound)
	ErrEmployeeNotFound = fmt.Errorf("employee %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)

	ErrBookAlreadyExists = fmt.Errorf("book %w", ErrAlreadyExists)
	ErrUserAlreadyExists = fmt.Errorf("user %w", ErrAlreadyExists)

	ErrNoCart          = fmt.Errorf("%w: cart is required", ErrInvalidInput)
	ErrBadQuantity     = fmt.Errorf("%w: quantity per book must be between 1 and %d", ErrInvalidInput, model.MaxCartQuantity)
	ErrBadPrice        = fmt.Errorf("%w: price must be positive with at most 2 decimals", ErrInvalidInput)
	ErrFutureDate      = fmt.Errorf("%w: date is in the future", ErrInvalidInput)
	ErrBadPages        = fmt.Errorf("%w: page count must be positive", ErrInvalidInput)
	ErrBadAmount       = fmt.Errorf("%w: amount must be positive with at most 2 decimals", ErrInvalidInput)
	ErrOrderNotPending = fmt.Errorf("%w: order is not pending", ErrInvalidInput)
	ErrOrderRejected   = fmt.Errorf("%w: order rejected", ErrInvalidInput)
	ErrMixedFilters    = fmt.Errorf("%w: email and search cannot be combined", ErrInvalidInput)
	ErrBookInUse       = fmt.Errorf("%w: book is referenced by orders", ErrInvalidInput)
	ErrEmployeeInUse   = fmt.Errorf("%w: employee handles orders", ErrInvalidInput)

	ErrClientBlocked = fmt.Errorf("%w: client is blocked", ErrForbidden)
)
