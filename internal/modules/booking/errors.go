package booking

import "errors"

var (
	ErrNotFound           = errors.New("booking not found")
	ErrServiceNotFound    = errors.New("service not found")
	ErrServiceUnavailable = errors.New("service is not active or not available")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation error")

	// ErrScheduleConflict: the mechanic already has an active booking on
	// that date.
	ErrScheduleConflict = errors.New("mechanic already has an active booking on this date")

	// ErrInvalidTransition is wrapped with the source and target status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConcurrentUpdate: the conditional status update lost a race with
	// another request.
	ErrConcurrentUpdate = errors.New("booking was modified concurrently")

	ErrNotCancellable      = errors.New("booking cannot be cancelled")
	ErrAlreadyReviewed     = errors.New("booking already has a review")
	ErrReviewNotAllowed    = errors.New("review is only allowed on completed bookings")
	ErrNoPendingReschedule = errors.New("no pending reschedule request")
	ErrRefundResolved      = errors.New("refund request already resolved")
	ErrDisputeNotAllowed   = errors.New("dispute cannot be opened in this status")

	// ErrNumberExhausted: the booking-number generator collided three
	// times in a row.
	ErrNumberExhausted = errors.New("could not generate a unique booking number")
)
