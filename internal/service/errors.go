package service

import (
	"errors"
	"fmt"

	"github.com/flicky/go-marketplace-api/internal/access"
)

// Categories. Handlers map these to status codes with errors.Is; every
// specific error below wraps exactly one of them.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
)

var (
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrUserAlreadyExists  = fmt.Errorf("user already exists: %w", ErrConflict)
	ErrUserHasSales       = fmt.Errorf("user's products appear in orders: %w", ErrConflict)
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	ErrProductHasSales = fmt.Errorf("product appears in orders: %w", ErrConflict)
	ErrInvalidPrice    = fmt.Errorf("%w: price must be >= 0 with at most two decimals", ErrBadRequest)

	ErrCartNotFound     = fmt.Errorf("cart %w", ErrNotFound)
	ErrCartExists       = fmt.Errorf("customer already has a cart: %w", ErrConflict)
	ErrCartItemNotFound = fmt.Errorf("cart item %w", ErrNotFound)
	ErrEmptyCart        = fmt.Errorf("%w: cart is empty", ErrBadRequest)

	ErrOrderNotFound     = fmt.Errorf("order %w", ErrNotFound)
	ErrOrderItemNotFound = fmt.Errorf("order item %w", ErrNotFound)

	ErrFavoriteNotFound = fmt.Errorf("favorite %w", ErrNotFound)
	ErrFavoriteExists   = fmt.Errorf("product already in favorites: %w", ErrConflict)

	ErrAccessDenied = fmt.Errorf("access denied: %w", ErrForbidden)
)

func authorize(c access.Caller, a access.Action, r access.Resource) error {
	if !access.Authorize(c, a, r) {
		return ErrAccessDenied
	}
	return nil
}
