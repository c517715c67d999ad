package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"mechbook/internal/domain"
	"mechbook/internal/repository"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if u != nil && args.Error(0) == nil {
		u.ID = 42 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) GenerateToken(userID int64, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func registerReq() RegisterRequest {
	return RegisterRequest{
		Email:    "rahim@mail.com",
		Password: "secret-pass-1",
		Name:     "Rahim",
		Role:     "customer",
	}
}

func TestRegister_Success(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTokens := new(MockTokenIssuer)

	mockUsers.On("GetByEmail", mock.Anything, "rahim@mail.com").Return(nil, repository.ErrNotFound)
	mockUsers.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockTokens.On("GenerateToken", int64(42), "customer").Return("jwt-token", nil)

	service := NewService(mockUsers, mockTokens)

	u, token, err := service.Register(context.Background(), registerReq())

	assert.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
	assert.Equal(t, domain.RoleCustomer, u.Role)
	assert.False(t, u.IsAvailable)
	assert.NotEqual(t, "secret-pass-1", u.PasswordHash)
}

func TestRegister_MechanicStartsAvailable(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTokens := new(MockTokenIssuer)

	mockUsers.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
	mockUsers.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockTokens.On("GenerateToken", int64(42), "mechanic").Return("jwt-token", nil)

	service := NewService(mockUsers, mockTokens)

	req := registerReq()
	req.Role = "mechanic"
	u, _, err := service.Register(context.Background(), req)

	assert.NoError(t, err)
	assert.True(t, u.IsAvailable)
}

func TestRegister_AdminRoleRejected(t *testing.T) {
	service := NewService(new(MockUserRepository), new(MockTokenIssuer))

	req := registerReq()
	req.Role = "admin"
	_, _, err := service.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRegister_EmailTaken(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockUsers.On("GetByEmail", mock.Anything, "rahim@mail.com").Return(&domain.User{ID: 1}, nil)

	service := NewService(mockUsers, new(MockTokenIssuer))

	_, _, err := service.Register(context.Background(), registerReq())
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_Success(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret-pass-1"), bcrypt.DefaultCost)
	existing := &domain.User{ID: 7, Email: "rahim@mail.com", PasswordHash: string(hash), Role: domain.RoleCustomer}

	mockUsers := new(MockUserRepository)
	mockTokens := new(MockTokenIssuer)
	mockUsers.On("GetByEmail", mock.Anything, "rahim@mail.com").Return(existing, nil)
	mockTokens.On("GenerateToken", int64(7), "customer").Return("jwt-token", nil)

	service := NewService(mockUsers, mockTokens)

	u, token, err := service.Login(context.Background(), LoginRequest{Email: "rahim@mail.com", Password: "secret-pass-1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "jwt-token", token)
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret-pass-1"), bcrypt.DefaultCost)
	existing := &domain.User{ID: 7, PasswordHash: string(hash)}

	mockUsers := new(MockUserRepository)
	mockUsers.On("GetByEmail", mock.Anything, mock.Anything).Return(existing, nil)

	service := NewService(mockUsers, new(MockTokenIssuer))

	_, _, err := service.Login(context.Background(), LoginRequest{Email: "rahim@mail.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockUsers.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)

	service := NewService(mockUsers, new(MockTokenIssuer))

	_, _, err := service.Login(context.Background(), LoginRequest{Email: "ghost@mail.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
