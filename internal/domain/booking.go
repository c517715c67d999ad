package domain

import (
	"math"
	"time"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingDisputed   BookingStatus = "disputed"
)

// ActiveStatuses are the statuses that occupy a mechanic's schedule.
// Two bookings for the same mechanic on the same date may not both be active.
var ActiveStatuses = []BookingStatus{
	BookingPending,
	BookingConfirmed,
	BookingInProgress,
}

// statusTransitions is the allowed transition table. Completed and cancelled
// are terminal. Disputed has no edges here on purpose: entering and leaving
// it happens only through the dispute workflow, which stamps the dispute
// fields the generic transition would skip.
var statusTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingConfirmed, BookingCancelled},
	BookingConfirmed:  {BookingInProgress, BookingCancelled},
	BookingInProgress: {BookingCompleted, BookingCancelled},
	BookingCompleted:  {},
	BookingCancelled:  {},
	BookingDisputed:   {},
}

func CanTransition(from, to BookingStatus) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsValidStatus(s BookingStatus) bool {
	_, ok := statusTransitions[s]
	return ok
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type DisputeStatus string

const (
	DisputeNone        DisputeStatus = "none"
	DisputeOpened      DisputeStatus = "opened"
	DisputeUnderReview DisputeStatus = "under_review"
	DisputeResolved    DisputeStatus = "resolved"
)

type RescheduleStatus string

const (
	RescheduleNone      RescheduleStatus = "none"
	RescheduleRequested RescheduleStatus = "requested"
	RescheduleAccepted  RescheduleStatus = "accepted"
	RescheduleDeclined  RescheduleStatus = "declined"
)

type RefundStatus string

const (
	RefundNone      RefundStatus = "none"
	RefundRequested RefundStatus = "requested"
	RefundApproved  RefundStatus = "approved"
	RefundRejected  RefundStatus = "rejected"
	RefundProcessed RefundStatus = "processed"
)

// StatusHistoryEntry is one row of a booking's append-only audit log.
// The last entry always matches the booking's current status.
type StatusHistoryEntry struct {
	ID        int64         `json:"id"`
	BookingID int64         `json:"booking_id" gorm:"index"`
	Status    BookingStatus `json:"status"`
	Note      string        `json:"note,omitempty" gorm:"type:text"`
	ChangedBy int64         `json:"changed_by"`
	CreatedAt time.Time     `json:"created_at"`
}

func (StatusHistoryEntry) TableName() string { return "booking_status_history" }

type AdditionalCharge struct {
	ID          int64     `json:"id"`
	BookingID   int64     `json:"booking_id" gorm:"index"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// Reschedule is the single outstanding reschedule negotiation slot.
// A new request overwrites a pending one.
type Reschedule struct {
	Status      RescheduleStatus `json:"status"`
	RequestedBy *int64           `json:"requested_by,omitempty"`
	RequestedAt *time.Time       `json:"requested_at,omitempty"`
	OldDate     *time.Time       `json:"old_date,omitempty"`
	OldTime     string           `json:"old_time,omitempty"`
	NewDate     *time.Time       `json:"new_date,omitempty"`
	NewTime     string           `json:"new_time,omitempty"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
	RespondedBy *int64           `json:"responded_by,omitempty"`
	Note        string           `json:"note,omitempty"`
}

type Refund struct {
	Status     RefundStatus `json:"status"`
	IsRefunded bool         `json:"is_refunded"`
	Amount     float64      `json:"amount,omitempty"`
	Reason     string       `json:"reason,omitempty"`
	RefundedAt *time.Time   `json:"refunded_at,omitempty"`
	RefundedBy *int64       `json:"refunded_by,omitempty"`
}

type Dispute struct {
	Status     DisputeStatus `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	Resolution string        `json:"resolution,omitempty"`
}

type Booking struct {
	ID            int64  `json:"id"`
	BookingNumber string `json:"booking_number" gorm:"uniqueIndex;size:32"`

	// Immutable references
	ServiceID  int64 `json:"service_id"`
	MechanicID int64 `json:"mechanic_id" gorm:"index"`
	CustomerID int64 `json:"customer_id" gorm:"index"`

	// Schedule
	ScheduledDate     time.Time `json:"scheduled_date" gorm:"index"`
	ScheduledTime     string    `json:"scheduled_time" gorm:"size:5"` // "HH:MM"
	EstimatedDuration int       `json:"estimated_duration"`           // minutes, catalog snapshot

	// Location
	Address      string   `json:"address"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Instructions string   `json:"instructions,omitempty" gorm:"type:text"`

	// Pricing. BasePrice is a catalog snapshot; TotalAmount = base + sum of
	// additional charges at the time each charge is appended.
	BasePrice         float64            `json:"base_price"`
	TotalAmount       float64            `json:"total_amount"`
	AdditionalCharges []AdditionalCharge `json:"additional_charges,omitempty" gorm:"foreignKey:BookingID"`

	Status        BookingStatus        `json:"status" gorm:"size:20;index"`
	StatusHistory []StatusHistoryEntry `json:"status_history,omitempty" gorm:"foreignKey:BookingID"`

	// Actual timing
	ActualStartTime *time.Time `json:"actual_start_time,omitempty"`
	ActualEndTime   *time.Time `json:"actual_end_time,omitempty"`
	ActualDuration  *int       `json:"actual_duration,omitempty"` // minutes

	// Payment mirror, written by the payment ledger
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"size:10"`
	IsPaid        bool          `json:"is_paid"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`

	// Cancellation
	CancellationReason string     `json:"cancellation_reason,omitempty" gorm:"type:text"`
	CancellationFee    float64    `json:"cancellation_fee,omitempty"`
	CancelledBy        *int64     `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	Dispute Dispute `json:"dispute" gorm:"embedded;embeddedPrefix:dispute_"`

	// Review, set at most once, only after completion
	CustomerRating *int       `json:"customer_rating,omitempty"`
	CustomerReview string     `json:"customer_review,omitempty" gorm:"type:text"`
	ReviewDate     *time.Time `json:"review_date,omitempty"`

	Reschedule Reschedule `json:"reschedule" gorm:"embedded;embeddedPrefix:reschedule_"`
	Refund     Refund     `json:"refund" gorm:"embedded;embeddedPrefix:refund_"`

	CustomerNotes       string `json:"customer_notes,omitempty" gorm:"type:text"`
	ServiceRequirements string `json:"service_requirements,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) IsTerminal() bool {
	return b.Status == BookingCompleted || b.Status == BookingCancelled
}

func (b *Booking) CanBeCancelled() bool {
	return !b.IsTerminal()
}

func (b *Booking) IsParticipant(userID int64) bool {
	return b.CustomerID == userID || b.MechanicID == userID
}

func (b *Booking) HasReview() bool {
	return b.CustomerRating != nil
}

// ActualMinutes returns the elapsed service time in whole minutes, rounded.
func ActualMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}

// DateOnly truncates a timestamp to midnight UTC. Schedule conflicts are
// checked at date granularity, not time-slot granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
