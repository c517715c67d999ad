package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mechbook/internal/domain"
	"mechbook/internal/repository"
)

type Service struct {
	bookings BookingRepository
	catalog  ServiceCatalog
	users    UserDirectory
	events   EventPublisher
	numbers  *NumberGenerator
}

func NewService(bookings BookingRepository, catalog ServiceCatalog, users UserDirectory, events EventPublisher) *Service {
	return &Service{
		bookings: bookings,
		catalog:  catalog,
		users:    users,
		events:   events,
		numbers:  NewNumberGenerator(),
	}
}

// Create books a catalog service for a customer. Price and duration are
// snapshotted from the listing; later catalog edits never touch existing
// bookings. The initial status is pending: the mechanic confirms.
func (s *Service) Create(ctx context.Context, actor Actor, req CreateBookingRequest) (*domain.Booking, error) {
	if actor.Role != domain.RoleCustomer {
		return nil, ErrForbidden
	}

	date, err := parseDate(req.ScheduledDate)
	if err != nil {
		return nil, fmt.Errorf("%w: scheduled_date must be YYYY-MM-DD", ErrValidation)
	}
	if !validClock(req.ScheduledTime) {
		return nil, fmt.Errorf("%w: scheduled_time must be HH:MM", ErrValidation)
	}

	svc, err := s.catalog.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	if !svc.Bookable() {
		return nil, ErrServiceUnavailable
	}

	// One active booking per mechanic per date. Date granularity, not
	// time-slot granularity. This count is only the fast path; the partial
	// unique index idx_no_overbooking is the arbiter under concurrency.
	cnt, err := s.bookings.CountActiveOnDate(ctx, svc.MechanicID, date, 0)
	if err != nil {
		return nil, err
	}
	if cnt > 0 {
		return nil, ErrScheduleConflict
	}

	b := &domain.Booking{
		ServiceID:           svc.ID,
		MechanicID:          svc.MechanicID,
		CustomerID:          actor.ID,
		ScheduledDate:       date,
		ScheduledTime:       req.ScheduledTime,
		EstimatedDuration:   svc.EstimatedDuration,
		Address:             req.Address,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		Instructions:        req.Instructions,
		BasePrice:           svc.BasePrice,
		TotalAmount:         svc.BasePrice,
		Status:              domain.BookingPending,
		PaymentStatus:       domain.PaymentPending,
		CustomerNotes:       req.CustomerNotes,
		ServiceRequirements: req.ServiceRequirements,
		StatusHistory: []domain.StatusHistoryEntry{
			{Status: domain.BookingPending, ChangedBy: actor.ID},
		},
	}

	// The unique index on booking_number is the real arbiter; colliding
	// inserts are retried with a fresh number. A hit on idx_no_overbooking
	// means two creates raced for the same mechanic and date, and a new
	// number would not help.
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		b.BookingNumber = s.numbers.Next()
		err = s.bookings.Create(ctx, b)
		if err == nil {
			s.publish(b)
			return b, nil
		}
		if repository.IsOverbookingViolation(err) {
			return nil, ErrScheduleConflict
		}
		if !repository.IsUniqueViolation(err) {
			return nil, err
		}
	}
	return nil, ErrNumberExhausted
}

func (s *Service) GetByID(ctx context.Context, actor Actor, id int64) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !b.IsParticipant(actor.ID) {
		return nil, ErrForbidden
	}
	return b, nil
}

// List returns the actor's bookings, role-scoped. Admins see everything.
func (s *Service) List(ctx context.Context, actor Actor, status *domain.BookingStatus, page, limit int) ([]domain.Booking, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	f := repository.BookingFilter{
		Status: status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	switch actor.Role {
	case domain.RoleCustomer:
		f.CustomerID = actor.ID
	case domain.RoleMechanic:
		f.MechanicID = actor.ID
	case domain.RoleAdmin:
		// unscoped
	default:
		return nil, 0, ErrForbidden
	}

	return s.bookings.List(ctx, f)
}

// Transition moves a booking through the status table:
//
//	pending     -> confirmed | cancelled
//	confirmed   -> in_progress | cancelled
//	in_progress -> completed | cancelled
//	completed, cancelled terminal
//
// Forward progress (confirm, start, complete) belongs to the mechanic;
// cancellation to either participant; admins may drive anything. The store
// update carries the source status as a precondition, so concurrent
// transitions cannot both land.
func (s *Service) Transition(ctx context.Context, actor Actor, id int64, target domain.BookingStatus, note string) (*domain.Booking, error) {
	if !domain.IsValidStatus(target) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, target)
	}

	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeTransition(actor, b, target); err != nil {
		return nil, err
	}
	if !domain.CanTransition(b.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, target)
	}

	now := time.Now()
	updates := map[string]interface{}{}
	switch target {
	case domain.BookingInProgress:
		updates["actual_start_time"] = now
	case domain.BookingCompleted:
		updates["actual_end_time"] = now
		if b.ActualStartTime != nil {
			updates["actual_duration"] = domain.ActualMinutes(*b.ActualStartTime, now)
		}
	case domain.BookingCancelled:
		updates["cancelled_by"] = actor.ID
		updates["cancelled_at"] = now
	}

	hist := domain.StatusHistoryEntry{Note: note, ChangedBy: actor.ID}
	if err := s.bookings.TransitionStatus(ctx, id, b.Status, target, updates, hist); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrConcurrentUpdate
		}
		return nil, err
	}

	return s.reload(ctx, id)
}

// Cancel is the direct shortcut: any participant (or admin) may cancel a
// booking that is not already terminal, with a reason.
func (s *Service) Cancel(ctx context.Context, actor Actor, id int64, reason string) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !b.IsParticipant(actor.ID) {
		return nil, ErrForbidden
	}
	if !b.CanBeCancelled() {
		return nil, ErrNotCancellable
	}

	now := time.Now()
	updates := map[string]interface{}{
		"cancellation_reason": reason,
		"cancelled_by":        actor.ID,
		"cancelled_at":        now,
	}
	hist := domain.StatusHistoryEntry{Note: reason, ChangedBy: actor.ID}
	if err := s.bookings.TransitionStatus(ctx, id, b.Status, domain.BookingCancelled, updates, hist); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrConcurrentUpdate
		}
		return nil, err
	}

	return s.reload(ctx, id)
}

// AddCharge appends an additional charge while work is still open and bumps
// the total. Charges are append-only.
func (s *Service) AddCharge(ctx context.Context, actor Actor, id int64, req ChargeRequest) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != b.MechanicID {
		return nil, ErrForbidden
	}
	if b.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot add charges to a %s booking", ErrValidation, b.Status)
	}

	charge := &domain.AdditionalCharge{
		BookingID:   id,
		Description: req.Description,
		Amount:      req.Amount,
	}
	if err := s.bookings.AppendCharge(ctx, charge); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// Stats aggregates counts by status plus completed revenue, scoped to the
// actor's role. Empty sets come back zero-filled.
func (s *Service) Stats(ctx context.Context, actor Actor) (*Stats, error) {
	var customerID, mechanicID int64
	switch actor.Role {
	case domain.RoleCustomer:
		customerID = actor.ID
	case domain.RoleMechanic:
		mechanicID = actor.ID
	case domain.RoleAdmin:
		// system-wide
	default:
		return nil, ErrForbidden
	}
	return s.aggregate(ctx, customerID, mechanicID)
}

// AdminStats is the system-wide variant behind the admin route.
func (s *Service) AdminStats(ctx context.Context, actor Actor) (*Stats, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.aggregate(ctx, 0, 0)
}

func (s *Service) aggregate(ctx context.Context, customerID, mechanicID int64) (*Stats, error) {
	counts, err := s.bookings.StatusCounts(ctx, customerID, mechanicID)
	if err != nil {
		return nil, err
	}
	revenue, err := s.bookings.CompletedRevenue(ctx, customerID, mechanicID)
	if err != nil {
		return nil, err
	}

	out := &Stats{
		ByStatus:         make(map[domain.BookingStatus]int64, 6),
		CompletedRevenue: revenue,
	}
	for _, st := range []domain.BookingStatus{
		domain.BookingPending, domain.BookingConfirmed, domain.BookingInProgress,
		domain.BookingCompleted, domain.BookingCancelled, domain.BookingDisputed,
	} {
		out.ByStatus[st] = counts[st]
		out.Total += counts[st]
	}
	return out, nil
}

func authorizeTransition(actor Actor, b *domain.Booking, target domain.BookingStatus) error {
	if actor.IsAdmin() {
		return nil
	}
	if !b.IsParticipant(actor.ID) {
		return ErrForbidden
	}

	switch target {
	case domain.BookingConfirmed, domain.BookingInProgress, domain.BookingCompleted:
		if actor.ID != b.MechanicID {
			return ErrForbidden
		}
	case domain.BookingCancelled:
		// either participant
	default:
		// disputed and its exits go through the dispute workflow
		return ErrForbidden
	}
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) reload(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(b)
	return b, nil
}

func (s *Service) publish(b *domain.Booking) {
	if s.events == nil {
		return
	}
	s.events.PublishBookingUpdate(BookingEvent{
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		Status:        b.Status,
		CustomerID:    b.CustomerID,
		MechanicID:    b.MechanicID,
		At:            time.Now(),
	})
}
