package registration

import "errors"

var (
	ErrNotFound      = errors.New("registration not found")
	ErrInvalidStatus = errors.New("invalid payment status")
	ErrValidation    = errors.New("validation failed")
)
