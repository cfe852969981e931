package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/services-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/services-marketplace/internal/events"
	"github.com/ignatzorin/services-marketplace/internal/models"
	"github.com/ignatzorin/services-marketplace/internal/repository"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingRepo) ListByParty(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockBookingRepo) CountByStatus(ctx context.Context, role valueobject.Role, userID int64) ([]models.StatusCount, error) {
	args := m.Called(ctx, role, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StatusCount), args.Error(1)
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id int64, expected, next valueobject.BookingStatus, actorID int64) (*models.Booking, error) {
	args := m.Called(ctx, id, expected, next, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

type mockWorkerRepo struct {
	mock.Mock
}

func (m *mockWorkerRepo) GetProfile(ctx context.Context, userID int64) (*models.WorkerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkerProfile), args.Error(1)
}

func (m *mockWorkerRepo) GetRating(ctx context.Context, userID int64) (*models.WorkerRating, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkerRating), args.Error(1)
}

type mockEventReader struct {
	mock.Mock
}

func (m *mockEventReader) ListByBooking(ctx context.Context, bookingID int64) ([]models.BookingEvent, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BookingEvent), args.Error(1)
}

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) Settle(ctx context.Context, bookingID, actorID int64, method valueobject.PaymentMethod, transactionID string) (*repository.Settlement, error) {
	args := m.Called(ctx, bookingID, actorID, method, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Settlement), args.Error(1)
}

func (m *mockPaymentRepo) GetByBookingID(ctx context.Context, bookingID int64) (*models.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) ListByParty(ctx context.Context, role valueobject.Role, userID int64) ([]models.PaymentWithBooking, error) {
	args := m.Called(ctx, role, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentWithBooking), args.Error(1)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) CreateWithAggregate(ctx context.Context, review *models.Review) (*models.WorkerRating, error) {
	args := m.Called(ctx, review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkerRating), args.Error(1)
}

func (m *mockReviewRepo) GetByBookingID(ctx context.Context, bookingID int64) (*models.Review, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) ListByWorker(ctx context.Context, workerID int64, limit, offset int) ([]models.Review, error) {
	args := m.Called(ctx, workerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

type mockRatingCache struct {
	mock.Mock
}

func (m *mockRatingCache) Get(ctx context.Context, workerID int64) (*models.WorkerRating, bool) {
	args := m.Called(ctx, workerID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*models.WorkerRating), args.Bool(1)
}

func (m *mockRatingCache) Set(ctx context.Context, rating *models.WorkerRating) {
	m.Called(ctx, rating)
}

func (m *mockRatingCache) Invalidate(ctx context.Context, workerID int64) {
	m.Called(ctx, workerID)
}

// capturePublisher запоминает опубликованные события.
type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
