package payment

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrValidation     = errors.New("validation failed")
	ErrAmountMismatch = errors.New("amount does not match competition price")
	ErrConflict       = errors.New("already registered and paid")
	ErrUploadFailed   = errors.New("document upload failed")
	// ErrPaymentInitiation wraps the gateway detail when session creation
	// fails; the record has already been moved to failed by then.
	ErrPaymentInitiation = errors.New("payment initiation failed")
)
