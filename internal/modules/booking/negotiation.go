package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"mechbook/internal/domain"
	"mechbook/internal/repository"
)

// AttachReview records the customer's rating on a completed booking, at
// most once, then recomputes the mechanic's aggregate rating (mean over all
// rated bookings, rounded to one decimal) and persists it on the identity
// record.
func (s *Service) AttachReview(ctx context.Context, actor Actor, id int64, req ReviewRequest) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != b.CustomerID {
		return nil, ErrForbidden
	}
	if b.Status != domain.BookingCompleted {
		return nil, ErrReviewNotAllowed
	}
	if b.HasReview() {
		return nil, ErrAlreadyReviewed
	}

	// The store write carries its own customer_rating IS NULL predicate, so
	// a concurrent second review loses instead of overwriting.
	if err := s.bookings.AttachReview(ctx, id, req.Rating, req.Comment, time.Now()); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}

	avg, count, err := s.bookings.MechanicRatingAggregate(ctx, b.MechanicID)
	if err != nil {
		return nil, err
	}
	rounded := math.Round(avg*10) / 10
	if err := s.users.UpdateMechanicRating(ctx, b.MechanicID, rounded, int(count)); err != nil {
		return nil, err
	}

	return s.load(ctx, id)
}

// RequestRefund opens (or overwrites) the booking's single refund slot.
// Only the customer may request; an approved or processed refund is final.
func (s *Service) RequestRefund(ctx context.Context, actor Actor, id int64, req RefundRequest) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != b.CustomerID {
		return nil, ErrForbidden
	}
	if req.Amount > b.TotalAmount {
		return nil, fmt.Errorf("%w: refund amount exceeds booking total", ErrValidation)
	}
	switch b.Refund.Status {
	case domain.RefundApproved, domain.RefundProcessed:
		return nil, ErrRefundResolved
	}

	err = s.bookings.UpdateFields(ctx, id, map[string]interface{}{
		"refund_status":      domain.RefundRequested,
		"refund_amount":      req.Amount,
		"refund_reason":      req.Reason,
		"refund_is_refunded": false,
		"refund_refunded_at": nil,
		"refund_refunded_by": nil,
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// ResolveRefund is the admin side of the refund workflow:
// requested -> approved | rejected, and approved (or requested) ->
// processed. Processing stamps refundedAt/refundedBy. Reconciliation with
// the payment ledger's own records is the caller's job.
func (s *Service) ResolveRefund(ctx context.Context, actor Actor, id int64, action string) (*domain.Booking, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Refund.Status == domain.RefundNone || b.Refund.Status == "" {
		return nil, fmt.Errorf("%w: no refund request on this booking", ErrValidation)
	}

	target := domain.RefundStatus(action)
	switch target {
	case domain.RefundApproved, domain.RefundRejected:
		if b.Refund.Status != domain.RefundRequested {
			return nil, ErrRefundResolved
		}
	case domain.RefundProcessed:
		if b.Refund.Status != domain.RefundRequested && b.Refund.Status != domain.RefundApproved {
			return nil, ErrRefundResolved
		}
	default:
		return nil, fmt.Errorf("%w: unknown refund action %q", ErrValidation, action)
	}

	updates := map[string]interface{}{"refund_status": target}
	if target == domain.RefundProcessed {
		updates["refund_is_refunded"] = true
		updates["refund_refunded_at"] = time.Now()
		updates["refund_refunded_by"] = actor.ID
	}
	if err := s.bookings.UpdateFields(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// RequestReschedule proposes a new date/time. Either participant may ask
// while the booking is not terminal. There is a single negotiation slot: a
// new request overwrites a pending one.
func (s *Service) RequestReschedule(ctx context.Context, actor Actor, id int64, req RescheduleRequest) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !b.IsParticipant(actor.ID) {
		return nil, ErrForbidden
	}
	if b.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot reschedule a %s booking", ErrValidation, b.Status)
	}

	newDate, err := parseDate(req.NewDate)
	if err != nil {
		return nil, fmt.Errorf("%w: new_date must be YYYY-MM-DD", ErrValidation)
	}
	if !validClock(req.NewTime) {
		return nil, fmt.Errorf("%w: new_time must be HH:MM", ErrValidation)
	}

	now := time.Now()
	err = s.bookings.UpdateFields(ctx, id, map[string]interface{}{
		"reschedule_status":       domain.RescheduleRequested,
		"reschedule_requested_by": actor.ID,
		"reschedule_requested_at": now,
		"reschedule_old_date":     b.ScheduledDate,
		"reschedule_old_time":     b.ScheduledTime,
		"reschedule_new_date":     newDate,
		"reschedule_new_time":     req.NewTime,
		"reschedule_note":         req.Note,
		"reschedule_responded_at": nil,
		"reschedule_responded_by": nil,
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// RespondReschedule lets the other party accept or decline. Accepting
// re-runs the same per-date conflict check as creation before the new
// schedule is applied; on conflict the original schedule is preserved and
// the request stays pending. Declining leaves the schedule untouched.
func (s *Service) RespondReschedule(ctx context.Context, actor Actor, id int64, accept bool, note string) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Reschedule.Status != domain.RescheduleRequested {
		return nil, ErrNoPendingReschedule
	}
	if !actor.IsAdmin() {
		if !b.IsParticipant(actor.ID) {
			return nil, ErrForbidden
		}
		if b.Reschedule.RequestedBy != nil && *b.Reschedule.RequestedBy == actor.ID {
			// the requester cannot answer their own request
			return nil, ErrForbidden
		}
	}

	now := time.Now()
	updates := map[string]interface{}{
		"reschedule_responded_at": now,
		"reschedule_responded_by": actor.ID,
	}
	if note != "" {
		updates["reschedule_note"] = note
	}

	if !accept {
		updates["reschedule_status"] = domain.RescheduleDeclined
		if err := s.bookings.UpdateFields(ctx, id, updates); err != nil {
			return nil, err
		}
		return s.load(ctx, id)
	}

	if b.Reschedule.NewDate == nil {
		return nil, ErrNoPendingReschedule
	}
	cnt, err := s.bookings.CountActiveOnDate(ctx, b.MechanicID, *b.Reschedule.NewDate, b.ID)
	if err != nil {
		return nil, err
	}
	if cnt > 0 {
		return nil, ErrScheduleConflict
	}

	updates["reschedule_status"] = domain.RescheduleAccepted
	updates["scheduled_date"] = domain.DateOnly(*b.Reschedule.NewDate)
	updates["scheduled_time"] = b.Reschedule.NewTime
	if err := s.bookings.UpdateFields(ctx, id, updates); err != nil {
		// a create racing this accept can take the date between the count
		// and the update; idx_no_overbooking catches it
		if repository.IsOverbookingViolation(err) {
			return nil, ErrScheduleConflict
		}
		return nil, err
	}
	return s.load(ctx, id)
}

// OpenDispute flags an in_progress or completed booking. This is the only
// path into the disputed status; the generic transition table has no edge
// into it.
func (s *Service) OpenDispute(ctx context.Context, actor Actor, id int64, reason string) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !b.IsParticipant(actor.ID) {
		return nil, ErrForbidden
	}
	if b.Status != domain.BookingInProgress && b.Status != domain.BookingCompleted {
		return nil, ErrDisputeNotAllowed
	}

	updates := map[string]interface{}{
		"dispute_status": domain.DisputeOpened,
		"dispute_reason": reason,
	}
	hist := domain.StatusHistoryEntry{Note: reason, ChangedBy: actor.ID}
	if err := s.bookings.TransitionStatus(ctx, id, b.Status, domain.BookingDisputed, updates, hist); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrConcurrentUpdate
		}
		return nil, err
	}
	return s.reload(ctx, id)
}

// ResolveDispute is admin-only: move the dispute under review, or resolve
// it with a resolution note, returning the booking to completed.
func (s *Service) ResolveDispute(ctx context.Context, actor Actor, id int64, req DisputeResolveRequest) (*domain.Booking, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingDisputed {
		return nil, fmt.Errorf("%w: booking is not disputed", ErrValidation)
	}

	if req.Action == string(domain.DisputeUnderReview) {
		err = s.bookings.UpdateFields(ctx, id, map[string]interface{}{
			"dispute_status": domain.DisputeUnderReview,
		})
		if err != nil {
			return nil, err
		}
		return s.load(ctx, id)
	}

	updates := map[string]interface{}{
		"dispute_status":     domain.DisputeResolved,
		"dispute_resolution": req.Resolution,
	}
	hist := domain.StatusHistoryEntry{Note: req.Resolution, ChangedBy: actor.ID}
	if err := s.bookings.TransitionStatus(ctx, id, domain.BookingDisputed, domain.BookingCompleted, updates, hist); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrConcurrentUpdate
		}
		return nil, err
	}
	return s.reload(ctx, id)
}
