package subscriber

import "errors"

// Sentinel errors for the subscriber service layer.
var (
	ErrNotFound     = errors.New("subscriber not found")
	ErrInvalidEmail = errors.New("email address is invalid")
	ErrMissingName  = errors.New("first and last name are required")
)
