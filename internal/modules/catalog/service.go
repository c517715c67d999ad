package catalog

import (
	"context"
	"errors"
	"fmt"

	"mechbook/internal/domain"
	"mechbook/internal/repository"
)

type ServiceRepository interface {
	Create(ctx context.Context, s *domain.Service) error
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	List(ctx context.Context, mechanicID int64, activeOnly bool, limit, offset int) ([]domain.Service, int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
}

type Service struct {
	services ServiceRepository
}

func NewService(services ServiceRepository) *Service {
	return &Service{services: services}
}

func (s *Service) Create(ctx context.Context, mechanicID int64, req CreateServiceRequest) (*domain.Service, error) {
	if req.BasePrice < 0 {
		return nil, fmt.Errorf("%w: base price must be >= 0", ErrValidation)
	}

	svc := &domain.Service{
		MechanicID:        mechanicID,
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		BasePrice:         req.BasePrice,
		EstimatedDuration: req.EstimatedDuration,
		IsActive:          true,
		IsAvailable:       true,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return svc, nil
}

func (s *Service) List(ctx context.Context, mechanicID int64, activeOnly bool, page, limit int) ([]domain.Service, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.services.List(ctx, mechanicID, activeOnly, limit, (page-1)*limit)
}

// Update lets the owning mechanic (or an admin) edit a listing. Edits never
// touch existing bookings: they carry their own price/duration snapshot.
func (s *Service) Update(ctx context.Context, actorID int64, isAdmin bool, id int64, req UpdateServiceRequest) (*domain.Service, error) {
	svc, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && svc.MechanicID != actorID {
		return nil, ErrForbidden
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.BasePrice != nil {
		if *req.BasePrice < 0 {
			return nil, fmt.Errorf("%w: base price must be >= 0", ErrValidation)
		}
		updates["base_price"] = *req.BasePrice
	}
	if req.EstimatedDuration != nil {
		updates["estimated_duration"] = *req.EstimatedDuration
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	if len(updates) == 0 {
		return svc, nil
	}

	if err := s.services.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}
