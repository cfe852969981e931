package models

import (
	"time"

	"github.com/ignatzorin/services-marketplace/internal/domain/valueobject"
)

// Действия журнала бронирования
const (
	BookingActionCreated         = "created"
	BookingActionStatusChanged   = "status_changed"
	BookingActionPaymentRecorded = "payment_recorded"
	BookingActionReviewAdded     = "review_added"
)

// BookingEvent представляет запись журнала изменений бронирования.
type BookingEvent struct {
	ID        int64                      `db:"id" json:"id"`
	BookingID int64                      `db:"booking_id" json:"booking_id"`
	ActorID   int64                      `db:"actor_id" json:"actor_id"`
	Action    string                     `db:"action" json:"action"`
	OldStatus *valueobject.BookingStatus `db:"old_status" json:"old_status,omitempty"`
	NewStatus *valueobject.BookingStatus `db:"new_status" json:"new_status,omitempty"`
	CreatedAt time.Time                  `db:"created_at" json:"created_at"`
}
