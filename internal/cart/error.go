package cart

import "errors"

var (
	// -- Session --
	ErrMissingSession = errors.New("cart session id is required")

	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("invalid cart quantity")
	ErrProductNotFound = errors.New("product not found")
	ErrMissingCustomer = errors.New("customer name is required")

	// -- Resource State --
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartEmpty        = errors.New("cart is empty")
)
