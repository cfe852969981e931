package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/services-marketplace/internal/models"
)

var ErrWorkerNotFound = errors.New("worker profile not found")

// WorkerRepository читает профили исполнителей. Профили ведёт внешний сервис,
// здесь меняется только агрегат рейтинга (см. ReviewRepository).
type WorkerRepository struct {
	db *sqlx.DB
}

func NewWorkerRepository(db *sqlx.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

func (r *WorkerRepository) GetProfile(ctx context.Context, userID int64) (*models.WorkerProfile, error) {
	var profile models.WorkerProfile
	err := r.db.GetContext(ctx, &profile, `
		SELECT user_id, hourly_rate, availability, rating, total_reviews
		FROM worker_profiles
		WHERE user_id = $1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWorkerNotFound
		}
		return nil, fmt.Errorf("worker repository: get profile: %w", err)
	}
	return &profile, nil
}

// GetRating возвращает сохранённый агрегат и распределение отзывов по оценкам.
func (r *WorkerRepository) GetRating(ctx context.Context, userID int64) (*models.WorkerRating, error) {
	var rating models.WorkerRating
	err := r.db.GetContext(ctx, &rating, `
		SELECT wp.user_id, wp.rating, wp.total_reviews, `+ratingBreakdownColumns("r")+`
		FROM worker_profiles wp
		LEFT JOIN reviews r ON r.worker_id = wp.user_id
		WHERE wp.user_id = $1
		GROUP BY wp.user_id
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWorkerNotFound
		}
		return nil, fmt.Errorf("worker repository: get rating: %w", err)
	}
	return &rating, nil
}

// ratingBreakdownColumns считает отзывы по каждой оценке из таблицы с алиасом alias.
func ratingBreakdownColumns(alias string) string {
	return fmt.Sprintf(`
		COUNT(%[1]s.rating) FILTER (WHERE %[1]s.rating = 5) AS five_star,
		COUNT(%[1]s.rating) FILTER (WHERE %[1]s.rating = 4) AS four_star,
		COUNT(%[1]s.rating) FILTER (WHERE %[1]s.rating = 3) AS three_star,
		COUNT(%[1]s.rating) FILTER (WHERE %[1]s.rating = 2) AS two_star,
		COUNT(%[1]s.rating) FILTER (WHERE %[1]s.rating = 1) AS one_star`, alias)
}
