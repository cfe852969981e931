package models

import "time"

// Review представляет отзыв заказчика об исполнителе по завершённому бронированию.
type Review struct {
	ID         int64     `db:"id" json:"id"`
	BookingID  int64     `db:"booking_id" json:"booking_id"`
	CustomerID int64     `db:"customer_id" json:"customer_id"`
	WorkerID   int64     `db:"worker_id" json:"worker_id"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
