package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/services-marketplace/internal/domain/valueobject"
)

// Booking описывает бронирование услуги исполнителя заказчиком.
// Сумма и комиссия считаются один раз при создании и больше не меняются.
type Booking struct {
	ID          int64                     `db:"id" json:"id"`
	CustomerID  int64                     `db:"customer_id" json:"customer_id"`
	WorkerID    int64                     `db:"worker_id" json:"worker_id"`
	ServiceType valueobject.ServiceType   `db:"service_type" json:"service_type"`
	BookingDate valueobject.Date          `db:"booking_date" json:"booking_date"`
	StartTime   valueobject.ClockTime     `db:"start_time" json:"start_time"`
	EndTime     valueobject.ClockTime     `db:"end_time" json:"end_time"`
	TotalAmount decimal.Decimal           `db:"total_amount" json:"total_amount"`
	PlatformFee decimal.Decimal           `db:"platform_fee" json:"platform_fee"`
	Status      valueobject.BookingStatus `db:"status" json:"status"`
	Description *string                   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time                 `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time                 `db:"updated_at" json:"updated_at"`
}

// PartyRole возвращает роль пользователя в бронировании.
func (b *Booking) PartyRole(userID int64) (valueobject.Role, bool) {
	switch userID {
	case b.CustomerID:
		return valueobject.RoleCustomer, true
	case b.WorkerID:
		return valueobject.RoleWorker, true
	}
	return "", false
}

func (b *Booking) IsParty(userID int64) bool {
	_, ok := b.PartyRole(userID)
	return ok
}

// StatusCount хранит число бронирований в одном статусе.
type StatusCount struct {
	Status valueobject.BookingStatus `db:"status" json:"status"`
	Count  int                       `db:"count" json:"count"`
}
