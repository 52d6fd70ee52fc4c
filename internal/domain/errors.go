package domain

import "errors"

// Failure taxonomy shared by the resolver, allocator and ledger. The HTTP
// boundary maps these to status codes; anything else is treated as a store
// failure the caller may retry.

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrMealNotFound       = errors.New("meal not found")
	ErrEmptyCatalog       = errors.New("no available meals at this restaurant")

	ErrMealUnavailable   = errors.New("meal is not available")
	ErrMealExpired       = errors.New("meal has expired")
	ErrOutOfStock        = errors.New("meal is out of stock")
	ErrInsufficientStock = errors.New("not enough stock")
)
