package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/services-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/services-marketplace/internal/models"
	"github.com/ignatzorin/services-marketplace/internal/repository/common"
)

var (
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrDuplicatePayment  = errors.New("payment for booking already exists")
	ErrBookingNotPayable = errors.New("booking is not payable")
)

const paymentsBookingUnique = "payments_booking_id_key"

// Settlement содержит результат проведения оплаты.
type Settlement struct {
	Payment        *models.Payment
	PreviousStatus valueobject.BookingStatus
	Status         valueobject.BookingStatus
}

type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Settle проводит оплату бронирования в одной транзакции.
// Строка бронирования блокируется, сумма и комиссия берутся из неё же.
// Второй платёж по бронированию отсекается уникальным индексом, а не предварительной проверкой.
// Бронирование в pending переходит в confirmed, остальные статусы не меняются.
func (r *PaymentRepository) Settle(ctx context.Context, bookingID, actorID int64, method valueobject.PaymentMethod, transactionID string) (*Settlement, error) {
	var result Settlement
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var booking models.Booking
		err := tx.GetContext(ctx, &booking, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, bookingID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("payment repository: lock booking: %w", err)
		}
		if !booking.Status.IsPayable() {
			return ErrBookingNotPayable
		}

		var payment models.Payment
		err = tx.GetContext(ctx, &payment, `
			INSERT INTO payments (booking_id, customer_id, worker_id, amount, platform_fee, payment_method, transaction_id, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, booking_id, customer_id, worker_id, amount, platform_fee, payment_method, transaction_id, status, created_at
		`, booking.ID, booking.CustomerID, booking.WorkerID, booking.TotalAmount, booking.PlatformFee,
			method, transactionID, models.PaymentStatusCompleted)
		if err != nil {
			if common.IsUniqueViolation(err, paymentsBookingUnique) {
				return ErrDuplicatePayment
			}
			return fmt.Errorf("payment repository: insert payment: %w", err)
		}

		result.Payment = &payment
		result.PreviousStatus = booking.Status
		result.Status = booking.Status

		if booking.Status == valueobject.BookingStatusPending {
			res, err := tx.ExecContext(ctx, `
				UPDATE bookings SET status = $2, updated_at = NOW()
				WHERE id = $1 AND status = $3
			`, booking.ID, valueobject.BookingStatusConfirmed, valueobject.BookingStatusPending)
			if err != nil {
				return fmt.Errorf("payment repository: confirm booking: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 1 {
				result.Status = valueobject.BookingStatusConfirmed
			}
		}

		return addBookingEvent(ctx, tx, booking.ID, actorID, models.BookingActionPaymentRecorded,
			statusPtr(result.PreviousStatus), statusPtr(result.Status))
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetByBookingID возвращает платёж по бронированию или ErrPaymentNotFound.
func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*models.Payment, error) {
	payment, err := common.GetByField[models.Payment](ctx, r.db, "payments", "booking_id", bookingID, ErrPaymentNotFound)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("payment repository: %w", err)
	}
	return payment, nil
}

// ListByParty возвращает историю платежей: оплаченные заказчиком или полученные исполнителем.
func (r *PaymentRepository) ListByParty(ctx context.Context, role valueobject.Role, userID int64) ([]models.PaymentWithBooking, error) {
	column, err := partyColumn(role)
	if err != nil {
		return nil, err
	}

	payments := []models.PaymentWithBooking{}
	query := `
		SELECT p.id, p.booking_id, p.customer_id, p.worker_id, p.amount, p.platform_fee, p.payment_method,
		       p.transaction_id, p.status, p.created_at, b.service_type, b.booking_date
		FROM payments p
		JOIN bookings b ON b.id = p.booking_id
		WHERE p.` + column + ` = $1
		ORDER BY p.created_at DESC, p.id DESC
	`
	if err := r.db.SelectContext(ctx, &payments, query, userID); err != nil {
		return nil, fmt.Errorf("payment repository: list by %s: %w", column, err)
	}
	return payments, nil
}
