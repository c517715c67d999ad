package repository

import (
	"context"

	"gorm.io/gorm"

	"mechbook/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// UpdateMechanicRating persists the denormalized review aggregate onto the
// mechanic's identity record.
func (r *UserRepository) UpdateMechanicRating(ctx context.Context, mechanicID int64, average float64, total int) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", mechanicID).
		Updates(map[string]interface{}{
			"average_rating": average,
			"total_reviews":  total,
		}).Error
}
