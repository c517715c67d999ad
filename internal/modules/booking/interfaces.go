package booking

import (
	"context"
	"time"

	"mechbook/internal/domain"
	"mechbook/internal/repository"
)

// BookingRepository is the persistence surface the engine needs.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, int64, error)
	CountActiveOnDate(ctx context.Context, mechanicID int64, date time.Time, excludeID int64) (int64, error)
	TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus, updates map[string]interface{}, hist domain.StatusHistoryEntry) error
	UpdateFields(ctx context.Context, id int64, updates map[string]interface{}) error
	AttachReview(ctx context.Context, id int64, rating int, comment string, at time.Time) error
	AppendCharge(ctx context.Context, charge *domain.AdditionalCharge) error
	MechanicRatingAggregate(ctx context.Context, mechanicID int64) (float64, int64, error)
	StatusCounts(ctx context.Context, customerID, mechanicID int64) (map[domain.BookingStatus]int64, error)
	CompletedRevenue(ctx context.Context, customerID, mechanicID int64) (float64, error)
}

// ServiceCatalog resolves the listing a booking is created against.
type ServiceCatalog interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// UserDirectory resolves identities and stores the mechanic review
// aggregate.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateMechanicRating(ctx context.Context, mechanicID int64, average float64, total int) error
}

// EventPublisher pushes booking state changes to observers (the realtime
// feed). May be nil.
type EventPublisher interface {
	PublishBookingUpdate(ev BookingEvent)
}

// BookingEvent is what collaborators observe when a booking changes state.
type BookingEvent struct {
	BookingID     int64                `json:"booking_id"`
	BookingNumber string               `json:"booking_number"`
	Status        domain.BookingStatus `json:"status"`
	CustomerID    int64                `json:"customer_id"`
	MechanicID    int64                `json:"mechanic_id"`
	At            time.Time            `json:"at"`
}
