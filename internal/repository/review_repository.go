package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/services-marketplace/internal/models"
	"github.com/ignatzorin/services-marketplace/internal/repository/common"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("review for booking already exists")
)

const reviewsBookingUnique = "reviews_booking_id_key"

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// CreateWithAggregate сохраняет отзыв и пересчитывает рейтинг исполнителя.
// Профиль исполнителя блокируется до конца транзакции, поэтому параллельные
// отзывы по разным бронированиям одного исполнителя считаются последовательно.
// Среднее и количество считает база по всем отзывам исполнителя.
func (r *ReviewRepository) CreateWithAggregate(ctx context.Context, review *models.Review) (*models.WorkerRating, error) {
	var rating models.WorkerRating
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var workerID int64
		err := tx.GetContext(ctx, &workerID, `SELECT user_id FROM worker_profiles WHERE user_id = $1 FOR UPDATE`, review.WorkerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrWorkerNotFound
			}
			return fmt.Errorf("review repository: lock worker profile: %w", err)
		}

		err = tx.QueryRowxContext(ctx, `
			INSERT INTO reviews (booking_id, customer_id, worker_id, rating, comment)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`, review.BookingID, review.CustomerID, review.WorkerID, review.Rating, review.Comment,
		).Scan(&review.ID, &review.CreatedAt)
		if err != nil {
			if common.IsUniqueViolation(err, reviewsBookingUnique) {
				return ErrDuplicateReview
			}
			return fmt.Errorf("review repository: insert review: %w", err)
		}

		err = tx.GetContext(ctx, &rating, `
			UPDATE worker_profiles wp
			SET rating = agg.avg_rating, total_reviews = agg.total
			FROM (
				SELECT COALESCE(ROUND(AVG(r.rating)::numeric, 2), 0) AS avg_rating, COUNT(*) AS total,`+
			ratingBreakdownColumns("r")+`
				FROM reviews r
				WHERE r.worker_id = $1
			) agg
			WHERE wp.user_id = $1
			RETURNING wp.user_id, wp.rating, wp.total_reviews,
				agg.five_star, agg.four_star, agg.three_star, agg.two_star, agg.one_star
		`, review.WorkerID)
		if err != nil {
			return fmt.Errorf("review repository: recompute rating: %w", err)
		}

		return addBookingEvent(ctx, tx, review.BookingID, review.CustomerID, models.BookingActionReviewAdded, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ReviewRepository) GetByBookingID(ctx context.Context, bookingID int64) (*models.Review, error) {
	review, err := common.GetByField[models.Review](ctx, r.db, "reviews", "booking_id", bookingID, ErrReviewNotFound)
	if err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("review repository: %w", err)
	}
	return review, nil
}

// ListByWorker возвращает отзывы об исполнителе, новые первыми.
func (r *ReviewRepository) ListByWorker(ctx context.Context, workerID int64, limit, offset int) ([]models.Review, error) {
	reviews := []models.Review{}
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT id, booking_id, customer_id, worker_id, rating, comment, created_at
		FROM reviews
		WHERE worker_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, workerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("review repository: list by worker: %w", err)
	}
	return reviews, nil
}
