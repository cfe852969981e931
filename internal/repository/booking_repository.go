package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/services-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/services-marketplace/internal/models"
	"github.com/ignatzorin/services-marketplace/internal/repository/common"
)

// Ошибки уровня репозитория.
var (
	ErrBookingNotFound = errors.New("booking not found")
	// ErrStatusConflict: статус бронирования изменился между чтением и записью.
	ErrStatusConflict = errors.New("booking status changed concurrently")
)

const bookingColumns = `id, customer_id, worker_id, service_type, booking_date, start_time, end_time,
	total_amount, platform_fee, status, description, created_at, updated_at`

// BookingRepository хранит бронирования. Статус меняется только через UpdateStatus.
type BookingRepository struct {
	db *sqlx.DB
}

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create сохраняет бронирование в статусе pending и пишет событие created.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO bookings (customer_id, worker_id, service_type, booking_date, start_time, end_time,
				total_amount, platform_fee, status, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', $9)
			RETURNING id, status, created_at, updated_at
		`, booking.CustomerID, booking.WorkerID, booking.ServiceType, booking.BookingDate, booking.StartTime,
			booking.EndTime, booking.TotalAmount, booking.PlatformFee, booking.Description,
		).Scan(&booking.ID, &booking.Status, &booking.CreatedAt, &booking.UpdatedAt)
		if err != nil {
			return fmt.Errorf("booking repository: create: %w", err)
		}

		return addBookingEvent(ctx, tx, booking.ID, booking.CustomerID, models.BookingActionCreated, nil, statusPtr(booking.Status))
	})
}

// GetByID возвращает бронирование по идентификатору.
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := common.GetByID[models.Booking](ctx, r.db, "bookings", id, ErrBookingNotFound)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("booking repository: %w", err)
	}
	return booking, nil
}

// BookingFilter описывает выборку бронирований одного участника.
type BookingFilter struct {
	Role   valueobject.Role
	UserID int64
	Status *valueobject.BookingStatus
	Limit  int
	Offset int
}

// ListByParty возвращает бронирования пользователя в его роли, новые первыми.
func (r *BookingRepository) ListByParty(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	column, err := partyColumn(filter.Role)
	if err != nil {
		return nil, err
	}

	q := common.Builder.Select(bookingColumns).
		From("bookings").
		Where(sq.Eq{column: filter.UserID}).
		OrderBy("created_at DESC", "id DESC")
	if filter.Status != nil {
		q = q.Where(sq.Eq{"status": *filter.Status})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("booking repository: build list query: %w", err)
	}

	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("booking repository: list by %s: %w", column, err)
	}
	return bookings, nil
}

// CountByStatus считает бронирования пользователя по статусам.
func (r *BookingRepository) CountByStatus(ctx context.Context, role valueobject.Role, userID int64) ([]models.StatusCount, error) {
	column, err := partyColumn(role)
	if err != nil {
		return nil, err
	}

	counts := []models.StatusCount{}
	query := `SELECT status, COUNT(*) AS count FROM bookings WHERE ` + column + ` = $1 GROUP BY status ORDER BY status`
	if err := r.db.SelectContext(ctx, &counts, query, userID); err != nil {
		return nil, fmt.Errorf("booking repository: count by status: %w", err)
	}
	return counts, nil
}

// UpdateStatus переводит бронирование из expected в next одним условным UPDATE.
// Если статус уже другой, возвращает ErrStatusConflict и ничего не пишет.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, expected, next valueobject.BookingStatus, actorID int64) (*models.Booking, error) {
	var booking models.Booking
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &booking, `
			UPDATE bookings SET status = $3, updated_at = NOW()
			WHERE id = $1 AND status = $2
			RETURNING `+bookingColumns, id, expected, next)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrStatusConflict
			}
			return fmt.Errorf("booking repository: update status: %w", err)
		}

		return addBookingEvent(ctx, tx, id, actorID, models.BookingActionStatusChanged, statusPtr(expected), statusPtr(next))
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func partyColumn(role valueobject.Role) (string, error) {
	switch role {
	case valueobject.RoleCustomer:
		return "customer_id", nil
	case valueobject.RoleWorker:
		return "worker_id", nil
	}
	return "", fmt.Errorf("booking repository: unknown role %q", role)
}
