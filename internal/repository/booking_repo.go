package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"mechbook/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type BookingFilter struct {
	CustomerID int64
	MechanicID int64
	Status     *domain.BookingStatus
	Limit      int
	Offset     int
}

// Create inserts the booking together with any attached status history and
// charge rows. A duplicate booking number surfaces as a unique violation;
// callers retry with a fresh number (IsUniqueViolation).
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).
		Preload("AdditionalCharges").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&b, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *BookingRepository) GetByNumber(ctx context.Context, number string) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&b).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]domain.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Booking{})
	if f.CustomerID > 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.MechanicID > 0 {
		q = q.Where("mechanic_id = ?", f.MechanicID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []domain.Booking
	if err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// CountActiveOnDate counts the mechanic's bookings on the given date whose
// status still occupies the schedule. excludeID skips the booking being
// rescheduled so it does not conflict with itself.
func (r *BookingRepository) CountActiveOnDate(ctx context.Context, mechanicID int64, date time.Time, excludeID int64) (int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("mechanic_id = ? AND scheduled_date = ? AND status IN ?",
			mechanicID, domain.DateOnly(date), domain.ActiveStatuses)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var cnt int64
	if err := q.Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

// TransitionStatus atomically moves a booking from one status to another.
// The WHERE clause carries the expected current status, so two concurrent
// transition requests cannot both succeed: the loser matches zero rows and
// gets ErrStaleStatus. The history entry is appended in the same
// transaction.
func (r *BookingRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus, updates map[string]interface{}, hist domain.StatusHistoryEntry) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Booking{}).
			Where("id = ? AND status = ?", id, from).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}

		hist.BookingID = id
		hist.Status = to
		return tx.Create(&hist).Error
	})
}

// UpdateFields writes non-status columns (review, reschedule, refund,
// payment mirror).
func (r *BookingRepository) UpdateFields(ctx context.Context, id int64, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AttachReview writes the one-shot review columns. The customer_rating IS
// NULL predicate makes a concurrent second review match zero rows and get
// ErrStaleStatus instead of overwriting the first one.
func (r *BookingRepository) AttachReview(ctx context.Context, id int64, rating int, comment string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND customer_rating IS NULL", id).
		Updates(map[string]interface{}{
			"customer_rating": rating,
			"customer_review": comment,
			"review_date":     at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// AppendCharge adds an additional charge and bumps the total in one
// transaction.
func (r *BookingRepository) AppendCharge(ctx context.Context, charge *domain.AdditionalCharge) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(charge).Error; err != nil {
			return err
		}
		res := tx.Model(&domain.Booking{}).
			Where("id = ?", charge.BookingID).
			Update("total_amount", gorm.Expr("total_amount + ?", charge.Amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// MechanicRatingAggregate scans all rated bookings of a mechanic and
// returns the raw mean plus the count. O(bookings-per-mechanic); fine at
// regional-marketplace volume.
func (r *BookingRepository) MechanicRatingAggregate(ctx context.Context, mechanicID int64) (float64, int64, error) {
	var row struct {
		Avg   float64
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Select("COALESCE(AVG(customer_rating), 0) AS avg, COUNT(customer_rating) AS count").
		Where("mechanic_id = ? AND customer_rating IS NOT NULL", mechanicID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Avg, row.Count, nil
}

// StatusCounts aggregates bookings by status, optionally scoped to one
// customer or mechanic. Missing statuses are simply absent from the map;
// the stats service zero-fills.
func (r *BookingRepository) StatusCounts(ctx context.Context, customerID, mechanicID int64) (map[domain.BookingStatus]int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Booking{})
	if customerID > 0 {
		q = q.Where("customer_id = ?", customerID)
	}
	if mechanicID > 0 {
		q = q.Where("mechanic_id = ?", mechanicID)
	}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := q.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[domain.BookingStatus]int64, len(rows))
	for _, row := range rows {
		out[domain.BookingStatus(row.Status)] = row.Count
	}
	return out, nil
}

// CompletedRevenue sums totalAmount over completed bookings in the same
// scope. Empty sets return 0, never an error.
func (r *BookingRepository) CompletedRevenue(ctx context.Context, customerID, mechanicID int64) (float64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Booking{}).Where("status = ?", domain.BookingCompleted)
	if customerID > 0 {
		q = q.Where("customer_id = ?", customerID)
	}
	if mechanicID > 0 {
		q = q.Where("mechanic_id = ?", mechanicID)
	}

	var sum float64
	err := q.Select("COALESCE(SUM(total_amount), 0)").Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}
