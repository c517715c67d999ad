package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mechbook/internal/domain"
	"mechbook/internal/repository"
)

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	args := m.Called(ctx, s)
	if s != nil && args.Error(0) == nil {
		s.ID = 10 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *MockServiceRepository) List(ctx context.Context, mechanicID int64, activeOnly bool, limit, offset int) ([]domain.Service, int64, error) {
	args := m.Called(ctx, mechanicID, activeOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Service), args.Get(1).(int64), args.Error(2)
}

func (m *MockServiceRepository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

func TestCreate_DefaultsActiveAndAvailable(t *testing.T) {
	mockRepo := new(MockServiceRepository)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	service := NewService(mockRepo)

	svc, err := service.Create(context.Background(), 2, CreateServiceRequest{
		Title:             "Brake pad replacement",
		BasePrice:         2500,
		EstimatedDuration: 90,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(2), svc.MechanicID)
	assert.True(t, svc.IsActive)
	assert.True(t, svc.IsAvailable)
}

func TestGetByID_NotFound(t *testing.T) {
	mockRepo := new(MockServiceRepository)
	mockRepo.On("GetByID", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound)

	service := NewService(mockRepo)

	_, err := service.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_OwnerOnly(t *testing.T) {
	existing := &domain.Service{ID: 10, MechanicID: 2}

	mockRepo := new(MockServiceRepository)
	mockRepo.On("GetByID", mock.Anything, int64(10)).Return(existing, nil)

	service := NewService(mockRepo)

	title := "New title"
	_, err := service.Update(context.Background(), 99, false, 10, UpdateServiceRequest{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_AdminBypassesOwnership(t *testing.T) {
	existing := &domain.Service{ID: 10, MechanicID: 2}

	mockRepo := new(MockServiceRepository)
	mockRepo.On("GetByID", mock.Anything, int64(10)).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, int64(10), mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["is_active"] == false
	})).Return(nil)

	service := NewService(mockRepo)

	off := false
	_, err := service.Update(context.Background(), 99, true, 10, UpdateServiceRequest{IsActive: &off})
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUpdate_NoFieldsIsNoop(t *testing.T) {
	existing := &domain.Service{ID: 10, MechanicID: 2}

	mockRepo := new(MockServiceRepository)
	mockRepo.On("GetByID", mock.Anything, int64(10)).Return(existing, nil)

	service := NewService(mockRepo)

	svc, err := service.Update(context.Background(), 2, false, 10, UpdateServiceRequest{})
	assert.NoError(t, err)
	assert.Equal(t, existing, svc)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestList_ClampsPaging(t *testing.T) {
	mockRepo := new(MockServiceRepository)
	mockRepo.On("List", mock.Anything, int64(0), true, 20, 0).Return([]domain.Service{}, int64(0), nil)

	service := NewService(mockRepo)

	_, _, err := service.List(context.Background(), 0, true, -3, 5000)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
