package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/services-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/services-marketplace/internal/http/middleware"
	"github.com/ignatzorin/services-marketplace/internal/logger"
	"github.com/ignatzorin/services-marketplace/internal/models"
	"github.com/ignatzorin/services-marketplace/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Discard()
	os.Exit(m.Run())
}

// withUser имитирует AuthMiddleware.
func withUser(userID int64, role valueobject.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
		c.Set(middleware.ContextRoleKey, role)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type mockBookingService struct {
	mock.Mock
}

func (m *mockBookingService) CreateBooking(ctx context.Context, in service.CreateBookingInput) (*models.Booking, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingService) TransitionBooking(ctx context.Context, bookingID, actorID int64, actorRole valueobject.Role, requested string) (*service.TransitionResult, error) {
	args := m.Called(ctx, bookingID, actorID, actorRole, requested)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TransitionResult), args.Error(1)
}

func (m *mockBookingService) GetBooking(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	args := m.Called(ctx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingService) ListMyBookings(ctx context.Context, userID int64, role valueobject.Role, status string, limit, offset int) (*service.BookingList, error) {
	args := m.Called(ctx, userID, role, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BookingList), args.Error(1)
}

func (m *mockBookingService) ListEvents(ctx context.Context, bookingID, userID int64) ([]models.BookingEvent, error) {
	args := m.Called(ctx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BookingEvent), args.Error(1)
}

type mockPaymentService struct {
	mock.Mock
}

func (m *mockPaymentService) RecordPayment(ctx context.Context, in service.RecordPaymentInput) (*service.PaymentResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PaymentResult), args.Error(1)
}

func (m *mockPaymentService) PaymentRequestURI(ctx context.Context, bookingID, userID int64) (string, error) {
	args := m.Called(ctx, bookingID, userID)
	return args.String(0), args.Error(1)
}

func (m *mockPaymentService) CheckPayment(ctx context.Context, bookingID, userID int64) (*service.PaymentCheck, error) {
	args := m.Called(ctx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PaymentCheck), args.Error(1)
}

func (m *mockPaymentService) ListMyPayments(ctx context.Context, userID int64, role valueobject.Role) ([]models.PaymentWithBooking, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentWithBooking), args.Error(1)
}

type mockReviewService struct {
	mock.Mock
}

func (m *mockReviewService) AddReview(ctx context.Context, bookingID, customerID int64, rating int, comment *string) (*service.ReviewResult, error) {
	args := m.Called(ctx, bookingID, customerID, rating, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReviewResult), args.Error(1)
}

func (m *mockReviewService) WorkerRating(ctx context.Context, workerID int64) (*models.WorkerRating, error) {
	args := m.Called(ctx, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkerRating), args.Error(1)
}

func (m *mockReviewService) ListWorkerReviews(ctx context.Context, workerID int64, limit, offset int) (*service.WorkerReviews, error) {
	args := m.Called(ctx, workerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.WorkerReviews), args.Error(1)
}
