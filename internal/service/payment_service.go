package service

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/services-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/services-marketplace/internal/events"
	"github.com/ignatzorin/services-marketplace/internal/logger"
	"github.com/ignatzorin/services-marketplace/internal/metrics"
	"github.com/ignatzorin/services-marketplace/internal/models"
	"github.com/ignatzorin/services-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/services-marketplace/internal/repository"
	"github.com/ignatzorin/services-marketplace/internal/validation"
)

type PaymentRepository interface {
	Settle(ctx context.Context, bookingID, actorID int64, method valueobject.PaymentMethod, transactionID string) (*repository.Settlement, error)
	GetByBookingID(ctx context.Context, bookingID int64) (*models.Payment, error)
	ListByParty(ctx context.Context, role valueobject.Role, userID int64) ([]models.PaymentWithBooking, error)
}

type BookingReader interface {
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
}

// PayeeConfig задаёт реквизиты получателя для платёжной ссылки UPI.
type PayeeConfig struct {
	ID   string
	Name string
}

type PaymentService struct {
	payments  PaymentRepository
	bookings  BookingReader
	payee     PayeeConfig
	publisher events.Publisher
}

func NewPaymentService(payments PaymentRepository, bookings BookingReader, payee PayeeConfig, publisher events.Publisher) *PaymentService {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &PaymentService{payments: payments, bookings: bookings, payee: payee, publisher: publisher}
}

type RecordPaymentInput struct {
	BookingID     int64
	ActorID       int64
	Method        string
	TransactionID string
}

// PaymentResult содержит проведённый платёж и статус бронирования после него.
type PaymentResult struct {
	Payment        *models.Payment           `json:"payment"`
	PreviousStatus valueobject.BookingStatus `json:"previous_status"`
	BookingStatus  valueobject.BookingStatus `json:"booking_status"`
}

// PaymentCheck сообщает, есть ли оплата по бронированию.
type PaymentCheck struct {
	HasPayment  bool       `json:"has_payment"`
	PaymentID   *int64     `json:"payment_id,omitempty"`
	Status      string     `json:"status,omitempty"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
}

// RecordPayment проводит оплату бронирования заказчиком.
// Предварительные проверки дают понятную ошибку, но защиту от двойной оплаты
// обеспечивает уникальный индекс в Settle.
func (s *PaymentService) RecordPayment(ctx context.Context, in RecordPaymentInput) (*PaymentResult, error) {
	booking, err := s.bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrNotBookingCustomer
		}
		return nil, apperror.Storage(err)
	}
	if booking.CustomerID != in.ActorID {
		return nil, apperror.ErrNotBookingCustomer
	}

	if _, err := s.payments.GetByBookingID(ctx, in.BookingID); err == nil {
		metrics.RecordDuplicate("payment")
		return nil, apperror.ErrDuplicatePayment
	} else if !errors.Is(err, repository.ErrPaymentNotFound) {
		return nil, apperror.Storage(err)
	}

	method, err := valueobject.NewPaymentMethod(in.Method)
	if err != nil {
		return nil, err
	}

	transactionID, err := validation.TransactionReference(in.TransactionID)
	if err != nil {
		return nil, err
	}

	if !booking.Status.IsPayable() {
		return nil, apperror.ErrBookingNotPayable.WithDetails(map[string]interface{}{"current_status": booking.Status})
	}

	settlement, err := s.payments.Settle(ctx, in.BookingID, in.ActorID, method, transactionID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicatePayment):
			metrics.RecordDuplicate("payment")
			logger.Log.WithField("booking_id", in.BookingID).Warn("payment: повторная оплата отклонена")
			return nil, apperror.ErrDuplicatePayment
		case errors.Is(err, repository.ErrBookingNotPayable):
			return nil, apperror.ErrBookingNotPayable
		case errors.Is(err, repository.ErrBookingNotFound):
			return nil, apperror.ErrNotBookingCustomer
		}
		return nil, apperror.Storage(err)
	}

	logger.Log.WithFields(logrus.Fields{
		"booking_id": in.BookingID,
		"payment_id": settlement.Payment.ID,
		"method":     method,
		"amount":     settlement.Payment.Amount.String(),
	}).Info("payment: оплата проведена")
	metrics.PaymentsRecordedTotal.WithLabelValues(string(method)).Inc()

	publishEvent(ctx, s.publisher, events.New(events.TypePaymentRecorded, in.BookingID, in.ActorID, settlement.Payment).
		ForParties(booking.CustomerID, booking.WorkerID))
	if settlement.Status != settlement.PreviousStatus {
		publishEvent(ctx, s.publisher, events.New(events.TypeBookingStatusChanged, in.BookingID, in.ActorID, map[string]interface{}{
			"previous_status": settlement.PreviousStatus,
			"status":          settlement.Status,
		}).ForParties(booking.CustomerID, booking.WorkerID))
	}

	return &PaymentResult{
		Payment:        settlement.Payment,
		PreviousStatus: settlement.PreviousStatus,
		BookingStatus:  settlement.Status,
	}, nil
}

// PaymentRequestURI строит ссылку upi://pay для оплаты по QR-коду.
// Ничего не записывает.
func (s *PaymentService) PaymentRequestURI(ctx context.Context, bookingID, userID int64) (string, error) {
	booking, err := s.partyBooking(ctx, bookingID, userID)
	if err != nil {
		return "", err
	}
	if !booking.Status.IsPayable() {
		return "", apperror.ErrBookingNotPayable.WithDetails(map[string]interface{}{"current_status": booking.Status})
	}

	if _, err := s.payments.GetByBookingID(ctx, bookingID); err == nil {
		return "", apperror.ErrDuplicatePayment
	} else if !errors.Is(err, repository.ErrPaymentNotFound) {
		return "", apperror.Storage(err)
	}

	return buildUPIURI(s.payee, booking.ID, booking.TotalAmount.StringFixed(2)), nil
}

// CheckPayment сообщает участнику бронирования, оплачено ли оно.
func (s *PaymentService) CheckPayment(ctx context.Context, bookingID, userID int64) (*PaymentCheck, error) {
	if _, err := s.partyBooking(ctx, bookingID, userID); err != nil {
		return nil, err
	}

	payment, err := s.payments.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return &PaymentCheck{HasPayment: false}, nil
		}
		return nil, apperror.Storage(err)
	}
	return &PaymentCheck{
		HasPayment:  true,
		PaymentID:   &payment.ID,
		Status:      payment.Status,
		PaymentDate: &payment.CreatedAt,
	}, nil
}

// ListMyPayments возвращает платежи пользователя в его роли.
func (s *PaymentService) ListMyPayments(ctx context.Context, userID int64, role valueobject.Role) ([]models.PaymentWithBooking, error) {
	payments, err := s.payments.ListByParty(ctx, role, userID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return payments, nil
}

func (s *PaymentService) partyBooking(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, apperror.Storage(err)
	}
	if !booking.IsParty(userID) {
		return nil, apperror.ErrBookingNotFound
	}
	return booking, nil
}

// buildUPIURI сохраняет порядок параметров, который ожидают UPI-приложения.
func buildUPIURI(payee PayeeConfig, bookingID int64, amount string) string {
	params := [][2]string{
		{"pa", payee.ID},
		{"pn", payee.Name},
		{"tn", "Payment for booking ID: " + strconv.FormatInt(bookingID, 10)},
		{"am", amount},
		{"cu", "INR"},
	}

	var b strings.Builder
	b.WriteString("upi://pay?")
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p[0])
		b.WriteByte('=')
		b.WriteString(strings.ReplaceAll(url.QueryEscape(p[1]), "+", "%20"))
	}
	return b.String()
}
