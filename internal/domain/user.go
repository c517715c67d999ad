package domain

import "time"

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleMechanic UserRole = "mechanic"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	ID           int64    `json:"id"`
	Email        string   `json:"email" validate:"required,email"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role"`
	Name         string   `json:"name"`
	Phone        string   `json:"phone,omitempty"`

	// Mechanic fields
	IsAvailable   bool    `json:"is_available"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsMechanic() bool { return u.Role == RoleMechanic }
func (u *User) IsAdmin() bool    { return u.Role == RoleAdmin }
