package payment

import (
	"context"

	"mechbook/internal/domain"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetByBookingID(ctx context.Context, bookingID int64) ([]domain.Payment, error)
	Resolve(ctx context.Context, id int64, updates map[string]interface{}) error
}

// BookingMirror is the narrow slice of the booking store the ledger needs:
// reading the booking a payment targets and flipping its payment columns.
type BookingMirror interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateFields(ctx context.Context, id int64, updates map[string]interface{}) error
}
