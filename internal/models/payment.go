package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/services-marketplace/internal/domain/valueobject"
)

// Других статусов платежа ledger не создаёт.
const PaymentStatusCompleted = "completed"

// Payment представляет оплату бронирования. Не больше одной на бронирование.
type Payment struct {
	ID            int64                     `db:"id" json:"id"`
	BookingID     int64                     `db:"booking_id" json:"booking_id"`
	CustomerID    int64                     `db:"customer_id" json:"customer_id"`
	WorkerID      int64                     `db:"worker_id" json:"worker_id"`
	Amount        decimal.Decimal           `db:"amount" json:"amount"`
	PlatformFee   decimal.Decimal           `db:"platform_fee" json:"platform_fee"`
	PaymentMethod valueobject.PaymentMethod `db:"payment_method" json:"payment_method"`
	TransactionID string                    `db:"transaction_id" json:"transaction_id"`
	Status        string                    `db:"status" json:"status"`
	CreatedAt     time.Time                 `db:"created_at" json:"created_at"`
}

// PaymentWithBooking дополняет платёж данными бронирования для истории платежей.
type PaymentWithBooking struct {
	Payment
	ServiceType valueobject.ServiceType `db:"service_type" json:"service_type"`
	BookingDate valueobject.Date        `db:"booking_date" json:"booking_date"`
}
