package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/services-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/services-marketplace/internal/models"
)

// BookingEventRepository читает журнал изменений бронирований.
// Записи добавляются только внутри транзакций, меняющих бронирование.
type BookingEventRepository struct {
	db *sqlx.DB
}

func NewBookingEventRepository(db *sqlx.DB) *BookingEventRepository {
	return &BookingEventRepository{db: db}
}

func (r *BookingEventRepository) ListByBooking(ctx context.Context, bookingID int64) ([]models.BookingEvent, error) {
	events := []models.BookingEvent{}
	err := r.db.SelectContext(ctx, &events, `
		SELECT id, booking_id, actor_id, action, old_status, new_status, created_at
		FROM booking_events
		WHERE booking_id = $1
		ORDER BY id ASC
	`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("booking event repository: list by booking: %w", err)
	}
	return events, nil
}

// addBookingEvent пишет запись журнала в текущей транзакции.
func addBookingEvent(ctx context.Context, tx sqlx.ExecerContext, bookingID, actorID int64, action string, oldStatus, newStatus *valueobject.BookingStatus) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO booking_events (booking_id, actor_id, action, old_status, new_status)
		VALUES ($1, $2, $3, $4, $5)
	`, bookingID, actorID, action, oldStatus, newStatus)
	if err != nil {
		return fmt.Errorf("booking event repository: add %s: %w", action, err)
	}
	return nil
}

func statusPtr(s valueobject.BookingStatus) *valueobject.BookingStatus {
	return &s
}
