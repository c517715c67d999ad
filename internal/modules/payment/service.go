package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"mechbook/internal/domain"
	"mechbook/internal/repository"
)

type Service struct {
	payments PaymentRepository
	bookings BookingMirror
}

func NewService(payments PaymentRepository, bookings BookingMirror) *Service {
	return &Service{payments: payments, bookings: bookings}
}

// Initiate records a customer's claim of having paid through a mobile
// financial service. The ledger row starts pending; nothing on the booking
// changes until an admin verifies.
func (s *Service) Initiate(ctx context.Context, customerID int64, req InitiateRequest) (*domain.Payment, error) {
	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, ErrForbidden
	}
	if b.IsPaid {
		return nil, ErrAlreadyResolved
	}

	p := &domain.Payment{
		BookingID:      b.ID,
		CustomerID:     customerID,
		Amount:         b.TotalAmount,
		Provider:       req.Provider,
		SenderNumber:   req.SenderNumber,
		TransactionRef: uuid.NewString(),
		Status:         domain.PaymentStatePending,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateRef
		}
		return nil, err
	}
	return p, nil
}

// Resolve verifies or fails a pending payment. Verification mirrors onto the
// booking: paymentStatus=paid, isPaid=true, paidAt=now.
func (s *Service) Resolve(ctx context.Context, adminID, paymentID int64, req ResolveRequest) (*domain.Payment, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{"verified_by": adminID, "verified_at": now}
	switch req.Action {
	case "verify":
		updates["status"] = domain.PaymentStateVerified
	case "fail":
		updates["status"] = domain.PaymentStateFailed
		updates["failure_reason"] = req.Reason
	}

	if err := s.payments.Resolve(ctx, paymentID, updates); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrAlreadyResolved
		}
		return nil, err
	}

	if req.Action == "verify" {
		mirror := map[string]interface{}{
			"payment_status": domain.PaymentPaid,
			"is_paid":        true,
			"paid_at":        now,
		}
		if err := s.bookings.UpdateFields(ctx, p.BookingID, mirror); err != nil {
			return nil, err
		}
	} else {
		if err := s.bookings.UpdateFields(ctx, p.BookingID, map[string]interface{}{
			"payment_status": domain.PaymentFailed,
		}); err != nil {
			return nil, err
		}
	}

	return s.payments.GetByID(ctx, paymentID)
}

// ListForBooking returns the booking's payment attempts, newest first.
// Participants and admins only.
func (s *Service) ListForBooking(ctx context.Context, actorID int64, isAdmin bool, bookingID int64) ([]domain.Payment, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if !isAdmin && !b.IsParticipant(actorID) {
		return nil, ErrForbidden
	}
	return s.payments.GetByBookingID(ctx, bookingID)
}
