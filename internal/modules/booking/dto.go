package booking

import (
	"time"

	"mechbook/internal/domain"
)

const (
	dateFormat  = "2006-01-02"
	clockFormat = "15:04"
)

// Actor is the requesting identity, taken from the verified token claims.
type Actor struct {
	ID   int64
	Role domain.UserRole
}

func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

type CreateBookingRequest struct {
	ServiceID           int64    `json:"service_id" binding:"required"`
	ScheduledDate       string   `json:"scheduled_date" binding:"required"` // YYYY-MM-DD
	ScheduledTime       string   `json:"scheduled_time" binding:"required"` // HH:MM
	Address             string   `json:"address" binding:"required"`
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
	Instructions        string   `json:"instructions"`
	CustomerNotes       string   `json:"customer_notes"`
	ServiceRequirements string   `json:"service_requirements"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type RefundRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Reason string  `json:"reason" binding:"required"`
}

type RefundResolveRequest struct {
	Action string `json:"action" binding:"required,oneof=approved rejected processed"`
}

type RescheduleRequest struct {
	NewDate string `json:"new_date" binding:"required"` // YYYY-MM-DD
	NewTime string `json:"new_time" binding:"required"` // HH:MM
	Note    string `json:"note"`
}

type RescheduleRespondRequest struct {
	Accept *bool  `json:"accept" binding:"required"`
	Note   string `json:"note"`
}

type ChargeRequest struct {
	Description string  `json:"description" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
}

type DisputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type DisputeResolveRequest struct {
	Action     string `json:"action" binding:"required,oneof=under_review resolved"`
	Resolution string `json:"resolution"`
}

// Stats is the aggregation payload. Every status key is present even when
// zero.
type Stats struct {
	ByStatus         map[domain.BookingStatus]int64 `json:"by_status"`
	Total            int64                          `json:"total"`
	CompletedRevenue float64                        `json:"completed_revenue"`
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, err
	}
	return domain.DateOnly(t), nil
}

func validClock(s string) bool {
	_, err := time.Parse(clockFormat, s)
	return err == nil
}
