package order

import "errors"

var (
	// -- Identity --
	ErrEmptyID             = errors.New("id must not be empty")
	ErrDuplicateOrderID    = errors.New("order id already exists")
	ErrDuplicateFavoriteID = errors.New("favorite id already exists")

	// -- Lookup --
	ErrOrderNotFound    = errors.New("order not found")
	ErrFavoriteNotFound = errors.New("favorite order not found")

	// -- Validation & Input --
	ErrInvalidInput  = errors.New("invalid order input")
	ErrInvalidStatus = errors.New("invalid order status")
	ErrEmptyOrder    = errors.New("order has no items")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// -- Lifecycle --
	ErrStoreClosed = errors.New("order store is closed")
	ErrStoreInUse  = errors.New("order store already mutated, load is startup only")
)
