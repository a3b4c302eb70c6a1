package user

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidProfile = errors.New("invalid profile")

	// -- Resource State --
	ErrProfileNotFound = errors.New("profile not found")
)
