package payment

import "errors"

var (
	ErrNotFound        = errors.New("payment not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation error")
	ErrAlreadyResolved = errors.New("payment already resolved")
	ErrDuplicateRef    = errors.New("transaction reference already recorded")
)
