package domain

import "time"

// Service is a catalog listing owned by a mechanic. Bookings snapshot its
// price and duration at creation time, so later edits never touch them.
type Service struct {
	ID                int64   `json:"id"`
	MechanicID        int64   `json:"mechanic_id" validate:"required"`
	Title             string  `json:"title" validate:"required"`
	Description       string  `json:"description,omitempty" gorm:"type:text"`
	Category          string  `json:"category,omitempty"`
	BasePrice         float64 `json:"base_price" validate:"required,gte=0"`
	EstimatedDuration int     `json:"estimated_duration"` // minutes
	IsActive          bool    `json:"is_active"`
	IsAvailable       bool    `json:"is_available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Service) Bookable() bool {
	return s.IsActive && s.IsAvailable
}
