package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mechbook/internal/domain"
	"mechbook/internal/repository"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	if p != nil && args.Error(0) == nil {
		p.ID = 11 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Resolve(ctx context.Context, id int64, updates map[string]interface{}) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

type MockBookingMirror struct {
	mock.Mock
}

func (m *MockBookingMirror) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingMirror) UpdateFields(ctx context.Context, id int64, updates map[string]interface{}) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

func unpaidBooking() *domain.Booking {
	return &domain.Booking{
		ID:            5,
		CustomerID:    1,
		MechanicID:    2,
		TotalAmount:   1700,
		Status:        domain.BookingCompleted,
		PaymentStatus: domain.PaymentPending,
	}
}

func TestInitiate_Success(t *testing.T) {
	mockPayments := new(MockPaymentRepository)
	mockBookings := new(MockBookingMirror)

	mockBookings.On("GetByID", mock.Anything, int64(5)).Return(unpaidBooking(), nil)
	mockPayments.On("Create", mock.Anything, mock.Anything).Return(nil)

	service := NewService(mockPayments, mockBookings)

	p, err := service.Initiate(context.Background(), 1, InitiateRequest{
		BookingID:    5,
		Provider:     "bkash",
		SenderNumber: "+8801712340001",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(5), p.BookingID)
	assert.Equal(t, 1700.0, p.Amount)
	assert.Equal(t, domain.PaymentStatePending, p.Status)
	assert.NotEmpty(t, p.TransactionRef)
}

func TestInitiate_NotTheCustomer(t *testing.T) {
	mockBookings := new(MockBookingMirror)
	mockBookings.On("GetByID", mock.Anything, int64(5)).Return(unpaidBooking(), nil)

	service := NewService(new(MockPaymentRepository), mockBookings)

	_, err := service.Initiate(context.Background(), 999, InitiateRequest{BookingID: 5, Provider: "bkash", SenderNumber: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestInitiate_AlreadyPaid(t *testing.T) {
	b := unpaidBooking()
	b.IsPaid = true

	mockBookings := new(MockBookingMirror)
	mockBookings.On("GetByID", mock.Anything, int64(5)).Return(b, nil)

	service := NewService(new(MockPaymentRepository), mockBookings)

	_, err := service.Initiate(context.Background(), 1, InitiateRequest{BookingID: 5, Provider: "bkash", SenderNumber: "x"})
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestInitiate_BookingMissing(t *testing.T) {
	mockBookings := new(MockBookingMirror)
	mockBookings.On("GetByID", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound)

	service := NewService(new(MockPaymentRepository), mockBookings)

	_, err := service.Initiate(context.Background(), 1, InitiateRequest{BookingID: 404, Provider: "bkash", SenderNumber: "x"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestResolve_VerifyMirrorsOntoBooking(t *testing.T) {
	p := &domain.Payment{ID: 11, BookingID: 5, Status: domain.PaymentStatePending}
	verified := &domain.Payment{ID: 11, BookingID: 5, Status: domain.PaymentStateVerified}

	mockPayments := new(MockPaymentRepository)
	mockBookings := new(MockBookingMirror)

	mockPayments.On("GetByID", mock.Anything, int64(11)).Return(p, nil).Once()
	mockPayments.On("Resolve", mock.Anything, int64(11), mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["status"] == domain.PaymentStateVerified
	})).Return(nil)
	mockBookings.On("UpdateFields", mock.Anything, int64(5), mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["payment_status"] == domain.PaymentPaid && u["is_paid"] == true
	})).Return(nil)
	mockPayments.On("GetByID", mock.Anything, int64(11)).Return(verified, nil)

	service := NewService(mockPayments, mockBookings)

	out, err := service.Resolve(context.Background(), 77, 11, ResolveRequest{Action: "verify"})
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStateVerified, out.Status)
	mockBookings.AssertExpectations(t)
}

func TestResolve_FailKeepsBookingUnpaid(t *testing.T) {
	p := &domain.Payment{ID: 11, BookingID: 5, Status: domain.PaymentStatePending}
	failed := &domain.Payment{ID: 11, BookingID: 5, Status: domain.PaymentStateFailed}

	mockPayments := new(MockPaymentRepository)
	mockBookings := new(MockBookingMirror)

	mockPayments.On("GetByID", mock.Anything, int64(11)).Return(p, nil).Once()
	mockPayments.On("Resolve", mock.Anything, int64(11), mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["status"] == domain.PaymentStateFailed && u["failure_reason"] == "reference not found"
	})).Return(nil)
	mockBookings.On("UpdateFields", mock.Anything, int64(5), mock.MatchedBy(func(u map[string]interface{}) bool {
		_, paid := u["is_paid"]
		return u["payment_status"] == domain.PaymentFailed && !paid
	})).Return(nil)
	mockPayments.On("GetByID", mock.Anything, int64(11)).Return(failed, nil)

	service := NewService(mockPayments, mockBookings)

	out, err := service.Resolve(context.Background(), 77, 11, ResolveRequest{Action: "fail", Reason: "reference not found"})
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStateFailed, out.Status)
}

func TestResolve_DoubleVerification(t *testing.T) {
	p := &domain.Payment{ID: 11, BookingID: 5, Status: domain.PaymentStateVerified}

	mockPayments := new(MockPaymentRepository)
	mockPayments.On("GetByID", mock.Anything, int64(11)).Return(p, nil)
	mockPayments.On("Resolve", mock.Anything, int64(11), mock.Anything).Return(repository.ErrStaleStatus)

	service := NewService(mockPayments, new(MockBookingMirror))

	_, err := service.Resolve(context.Background(), 77, 11, ResolveRequest{Action: "verify"})
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestListForBooking_ParticipantsOnly(t *testing.T) {
	mockPayments := new(MockPaymentRepository)
	mockBookings := new(MockBookingMirror)

	mockBookings.On("GetByID", mock.Anything, int64(5)).Return(unpaidBooking(), nil)
	mockPayments.On("GetByBookingID", mock.Anything, int64(5)).Return([]domain.Payment{{ID: 11}}, nil)

	service := NewService(mockPayments, mockBookings)

	items, err := service.ListForBooking(context.Background(), 1, false, 5)
	assert.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = service.ListForBooking(context.Background(), 999, false, 5)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = service.ListForBooking(context.Background(), 999, true, 5)
	assert.NoError(t, err)
}
