package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/services-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/services-marketplace/internal/events"
	"github.com/ignatzorin/services-marketplace/internal/models"
	"github.com/ignatzorin/services-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/services-marketplace/internal/repository"
)

var testPayee = PayeeConfig{ID: "servicesmarket@upi", Name: "Services Marketplace"}

func newPaymentServiceWithMocks() (*PaymentService, *mockPaymentRepo, *mockBookingRepo, *capturePublisher) {
	payments := new(mockPaymentRepo)
	bookings := new(mockBookingRepo)
	pub := &capturePublisher{}
	return NewPaymentService(payments, bookings, testPayee, pub), payments, bookings, pub
}

func validPaymentInput() RecordPaymentInput {
	return RecordPaymentInput{
		BookingID:     testBookingID,
		ActorID:       testCustomerID,
		Method:        "upi",
		TransactionID: "TXN-1",
	}
}

func TestPaymentService_RecordPayment_ConfirmsPending(t *testing.T) {
	svc, payments, bookings, pub := newPaymentServiceWithMocks()
	ctx := context.Background()

	bookings.On("GetByID", ctx, testBookingID).Return(testBooking(valueobject.BookingStatusPending), nil)
	payments.On("GetByBookingID", ctx, testBookingID).Return(nil, repository.ErrPaymentNotFound)
	payments.On("Settle", ctx, testBookingID, testCustomerID, valueobject.PaymentMethodUPI, "TXN-1").
		Return(&repository.Settlement{
			Payment: &models.Payment{
				ID:            1,
				BookingID:     testBookingID,
				Amount:        decimal.RequireFromString("200.00"),
				PlatformFee:   decimal.RequireFromString("80.00"),
				PaymentMethod: valueobject.PaymentMethodUPI,
				TransactionID: "TXN-1",
				Status:        models.PaymentStatusCompleted,
			},
			PreviousStatus: valueobject.BookingStatusPending,
			Status:         valueobject.BookingStatusConfirmed,
		}, nil)

	in := validPaymentInput()
	in.TransactionID = "  TXN-1 "
	result, err := svc.RecordPayment(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, valueobject.BookingStatusPending, result.PreviousStatus)
	assert.Equal(t, valueobject.BookingStatusConfirmed, result.BookingStatus)
	assert.Equal(t, "200.00", result.Payment.Amount.StringFixed(2))
	assert.Equal(t, []string{events.TypePaymentRecorded, events.TypeBookingStatusChanged}, pub.types())
	payments.AssertExpectations(t)
}

func TestPaymentService_RecordPayment_CheckOrder(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		in         func() RecordPaymentInput
		booking    *models.Booking
		bookingErr error
		existing   *models.Payment
		wantErr    error
	}{
		{
			name:       "missing booking",
			in:         validPaymentInput,
			bookingErr: repository.ErrBookingNotFound,
			wantErr:    apperror.ErrNotBookingCustomer,
		},
		{
			name: "worker pays",
			in: func() RecordPaymentInput {
				in := validPaymentInput()
				in.ActorID = testWorkerID
				return in
			},
			booking: testBooking(valueobject.BookingStatusPending),
			wantErr: apperror.ErrNotBookingCustomer,
		},
		{
			name: "already paid beats bad method",
			in: func() RecordPaymentInput {
				in := validPaymentInput()
				in.Method = "cash"
				return in
			},
			booking:  testBooking(valueobject.BookingStatusConfirmed),
			existing: &models.Payment{ID: 1, BookingID: testBookingID},
			wantErr:  apperror.ErrDuplicatePayment,
		},
		{
			name: "bad method beats blank reference",
			in: func() RecordPaymentInput {
				in := validPaymentInput()
				in.Method = "cash"
				in.TransactionID = ""
				return in
			},
			booking: testBooking(valueobject.BookingStatusPending),
			wantErr: apperror.ErrInvalidMethod,
		},
		{
			name: "blank reference beats cancelled",
			in: func() RecordPaymentInput {
				in := validPaymentInput()
				in.TransactionID = "   "
				return in
			},
			booking: testBooking(valueobject.BookingStatusCancelled),
			wantErr: apperror.ErrMissingReference,
		},
		{
			name:    "rejected booking",
			in:      validPaymentInput,
			booking: testBooking(valueobject.BookingStatusRejected),
			wantErr: apperror.ErrBookingNotPayable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, payments, bookings, pub := newPaymentServiceWithMocks()
			bookings.On("GetByID", ctx, testBookingID).Return(tt.booking, tt.bookingErr)
			if tt.existing != nil {
				payments.On("GetByBookingID", ctx, testBookingID).Return(tt.existing, nil)
			} else {
				payments.On("GetByBookingID", ctx, testBookingID).Return(nil, repository.ErrPaymentNotFound)
			}

			_, err := svc.RecordPayment(ctx, tt.in())
			assert.ErrorIs(t, err, tt.wantErr)
			payments.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			assert.Empty(t, pub.types())
		})
	}
}

func TestPaymentService_RecordPayment_QRAlias(t *testing.T) {
	svc, payments, bookings, _ := newPaymentServiceWithMocks()
	ctx := context.Background()

	bookings.On("GetByID", ctx, testBookingID).Return(testBooking(valueobject.BookingStatusConfirmed), nil)
	payments.On("GetByBookingID", ctx, testBookingID).Return(nil, repository.ErrPaymentNotFound)
	payments.On("Settle", ctx, testBookingID, testCustomerID, valueobject.PaymentMethodUPI, "TXN-1").
		Return(&repository.Settlement{
			Payment:        &models.Payment{ID: 1, BookingID: testBookingID, PaymentMethod: valueobject.PaymentMethodUPI},
			PreviousStatus: valueobject.BookingStatusConfirmed,
			Status:         valueobject.BookingStatusConfirmed,
		}, nil)

	in := validPaymentInput()
	in.Method = "qr"
	result, err := svc.RecordPayment(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, valueobject.BookingStatusConfirmed, result.BookingStatus)
	payments.AssertExpectations(t)
}

func TestPaymentService_RecordPayment_SettleErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		err     error
		wantErr error
		code    apperror.ErrorCode
	}{
		{name: "duplicate at insert", err: repository.ErrDuplicatePayment, wantErr: apperror.ErrDuplicatePayment},
		{name: "cancelled meanwhile", err: repository.ErrBookingNotPayable, wantErr: apperror.ErrBookingNotPayable},
		{name: "storage", err: errors.New("connection reset"), code: apperror.ErrCodeStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, payments, bookings, pub := newPaymentServiceWithMocks()
			bookings.On("GetByID", ctx, testBookingID).Return(testBooking(valueobject.BookingStatusPending), nil)
			payments.On("GetByBookingID", ctx, testBookingID).Return(nil, repository.ErrPaymentNotFound)
			payments.On("Settle", ctx, testBookingID, testCustomerID, valueobject.PaymentMethodUPI, "TXN-1").Return(nil, tt.err)

			_, err := svc.RecordPayment(ctx, validPaymentInput())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.code != "" {
				assert.True(t, apperror.HasCode(err, tt.code))
			}
			assert.Empty(t, pub.types())
		})
	}
}

// ledgerStore: хранилище в памяти с уникальностью платежа по бронированию,
// как у уникального индекса в базе.
type ledgerStore struct {
	mu       sync.Mutex
	booking  models.Booking
	payments map[int64]*models.Payment
	nextID   int64
}

func newLedgerStore(status valueobject.BookingStatus) *ledgerStore {
	return &ledgerStore{booking: *testBooking(status), payments: map[int64]*models.Payment{}}
}

func (s *ledgerStore) GetByID(_ context.Context, id int64) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.booking.ID {
		return nil, repository.ErrBookingNotFound
	}
	b := s.booking
	return &b, nil
}

func (s *ledgerStore) GetByBookingID(_ context.Context, bookingID int64) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[bookingID]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	return p, nil
}

func (s *ledgerStore) Settle(_ context.Context, bookingID, _ int64, method valueobject.PaymentMethod, transactionID string) (*repository.Settlement, error) {
	// окно между предварительной проверкой и записью
	time.Sleep(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.booking.Status.IsPayable() {
		return nil, repository.ErrBookingNotPayable
	}
	if _, ok := s.payments[bookingID]; ok {
		return nil, repository.ErrDuplicatePayment
	}
	s.nextID++
	p := &models.Payment{
		ID:            s.nextID,
		BookingID:     bookingID,
		Amount:        s.booking.TotalAmount,
		PlatformFee:   s.booking.PlatformFee,
		PaymentMethod: method,
		TransactionID: transactionID,
		Status:        models.PaymentStatusCompleted,
		CreatedAt:     time.Now(),
	}
	s.payments[bookingID] = p

	prev := s.booking.Status
	if prev == valueobject.BookingStatusPending {
		s.booking.Status = valueobject.BookingStatusConfirmed
	}
	return &repository.Settlement{Payment: p, PreviousStatus: prev, Status: s.booking.Status}, nil
}

func (s *ledgerStore) ListByParty(_ context.Context, _ valueobject.Role, _ int64) ([]models.PaymentWithBooking, error) {
	return nil, nil
}

func TestPaymentService_RecordPayment_ConcurrentSingleSuccess(t *testing.T) {
	store := newLedgerStore(valueobject.BookingStatusPending)
	svc := NewPaymentService(store, store, testPayee, &capturePublisher{})
	ctx := context.Background()

	const attempts = 16
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.RecordPayment(ctx, validPaymentInput())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperror.ErrDuplicatePayment):
				duplicates++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, duplicates)
	assert.Len(t, store.payments, 1)
	assert.Equal(t, valueobject.BookingStatusConfirmed, store.booking.Status)

	// повторный вызов после оплаты
	_, err := svc.RecordPayment(ctx, validPaymentInput())
	assert.ErrorIs(t, err, apperror.ErrDuplicatePayment)
}

func TestPaymentService_PaymentRequestURI(t *testing.T) {
	ctx := context.Background()

	t.Run("builds upi link", func(t *testing.T) {
		svc, payments, bookings, _ := newPaymentServiceWithMocks()
		bookings.On("GetByID", ctx, testBookingID).Return(testBooking(valueobject.BookingStatusPending), nil)
		payments.On("GetByBookingID", ctx, testBookingID).Return(nil, repository.ErrPaymentNotFound)

		uri, err := svc.PaymentRequestURI(ctx, testBookingID, testWorkerID)
		require.NoError(t, err)
		assert.Equal(t,
			"upi://pay?pa=servicesmarket%40upi&pn=Services%20Marketplace&tn=Payment%20for%20booking%20ID%3A%207&am=200.00&cu=INR",
			uri)
	})

	t.Run("already paid", func(t *testing.T) {
		svc, payments, bookings, _ := newPaymentServiceWithMocks()
		bookings.On("GetByID", ctx, testBookingID).Return(testBooking(valueobject.BookingStatusConfirmed), nil)
		payments.On("GetByBookingID", ctx, testBookingID).Return(&models.Payment{ID: 1}, nil)

		_, err := svc.PaymentRequestURI(ctx, testBookingID, testCustomerID)
		assert.ErrorIs(t, err, apperror.ErrDuplicatePayment)
	})

	t.Run("cancelled", func(t *testing.T) {
		svc, _, bookings, _ := newPaymentServiceWithMocks()
		bookings.On("GetByID", ctx, testBookingID).Return(testBooking(valueobject.BookingStatusCancelled), nil)

		_, err := svc.PaymentRequestURI(ctx, testBookingID, testCustomerID)
		assert.ErrorIs(t, err, apperror.ErrBookingNotPayable)
	})

	t.Run("outsider", func(t *testing.T) {
		svc, _, bookings, _ := newPaymentServiceWithMocks()
		bookings.On("GetByID", ctx, testBookingID).Return(testBooking(valueobject.BookingStatusPending), nil)

		_, err := svc.PaymentRequestURI(ctx, testBookingID, 999)
		assert.ErrorIs(t, err, apperror.ErrBookingNotFound)
	})
}

func TestPaymentService_CheckPayment(t *testing.T) {
	svc, payments, bookings, _ := newPaymentServiceWithMocks()
	ctx := context.Background()
	paidAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	bookings.On("GetByID", ctx, testBookingID).Return(testBooking(valueobject.BookingStatusConfirmed), nil)
	payments.On("GetByBookingID", ctx, testBookingID).
		Return(&models.Payment{ID: 3, Status: models.PaymentStatusCompleted, CreatedAt: paidAt}, nil).Once()
	payments.On("GetByBookingID", ctx, testBookingID).Return(nil, repository.ErrPaymentNotFound).Once()

	check, err := svc.CheckPayment(ctx, testBookingID, testWorkerID)
	require.NoError(t, err)
	assert.True(t, check.HasPayment)
	assert.Equal(t, int64(3), *check.PaymentID)
	assert.Equal(t, paidAt, *check.PaymentDate)

	check, err = svc.CheckPayment(ctx, testBookingID, testCustomerID)
	require.NoError(t, err)
	assert.False(t, check.HasPayment)
	assert.Nil(t, check.PaymentID)

	_, err = svc.CheckPayment(ctx, testBookingID, 999)
	assert.ErrorIs(t, err, apperror.ErrBookingNotFound)
}

func TestPaymentService_ListMyPayments(t *testing.T) {
	svc, payments, _, _ := newPaymentServiceWithMocks()
	ctx := context.Background()

	payments.On("ListByParty", ctx, valueobject.RoleWorker, testWorkerID).
		Return([]models.PaymentWithBooking{{Payment: models.Payment{ID: 1}}}, nil)
	payments.On("ListByParty", ctx, valueobject.RoleCustomer, testCustomerID).
		Return(nil, errors.New("boom"))

	got, err := svc.ListMyPayments(ctx, testWorkerID, valueobject.RoleWorker)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.ListMyPayments(ctx, testCustomerID, valueobject.RoleCustomer)
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeStorage))
}
