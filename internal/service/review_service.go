package service

import (
	"context"
	"errors"

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

type ReviewRepository interface {
	CreateWithAggregate(ctx context.Context, review *models.Review) (*models.WorkerRating, error)
	GetByBookingID(ctx context.Context, bookingID int64) (*models.Review, error)
	ListByWorker(ctx context.Context, workerID int64, limit, offset int) ([]models.Review, error)
}

type WorkerRatingReader interface {
	GetRating(ctx context.Context, userID int64) (*models.WorkerRating, error)
}

// RatingCache хранит агрегат рейтинга исполнителя. Промах кэша не ошибка.
// Set не заменяет агрегат с большим TotalReviews: опоздавшая запись старого
// снимка не должна перетереть свежий агрегат.
type RatingCache interface {
	Get(ctx context.Context, workerID int64) (*models.WorkerRating, bool)
	Set(ctx context.Context, rating *models.WorkerRating)
	Invalidate(ctx context.Context, workerID int64)
}

type ReviewService struct {
	reviews   ReviewRepository
	bookings  BookingReader
	workers   WorkerRatingReader
	cache     RatingCache
	publisher events.Publisher
}

// NewReviewService создаёт сервис отзывов. cache может быть nil.
func NewReviewService(reviews ReviewRepository, bookings BookingReader, workers WorkerRatingReader, cache RatingCache, publisher events.Publisher) *ReviewService {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &ReviewService{reviews: reviews, bookings: bookings, workers: workers, cache: cache, publisher: publisher}
}

// ReviewResult содержит сохранённый отзыв и пересчитанный рейтинг исполнителя.
type ReviewResult struct {
	Review       *models.Review       `json:"review"`
	WorkerRating *models.WorkerRating `json:"worker_rating"`
}

type WorkerReviews struct {
	Rating  *models.WorkerRating `json:"rating"`
	Reviews []models.Review      `json:"reviews"`
}

// AddReview сохраняет отзыв заказчика по завершённому бронированию.
func (s *ReviewService) AddReview(ctx context.Context, bookingID, customerID int64, rating int, comment *string) (*ReviewResult, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, apperror.Storage(err)
	}
	role, ok := booking.PartyRole(customerID)
	if !ok {
		return nil, apperror.ErrBookingNotFound
	}
	if role != valueobject.RoleCustomer {
		return nil, apperror.ErrReviewerNotCustomer
	}
	if booking.Status != valueobject.BookingStatusCompleted {
		return nil, apperror.ErrBookingNotCompleted.WithDetails(map[string]interface{}{"current_status": booking.Status})
	}

	if _, err := s.reviews.GetByBookingID(ctx, bookingID); err == nil {
		metrics.RecordDuplicate("review")
		return nil, apperror.ErrDuplicateReview
	} else if !errors.Is(err, repository.ErrReviewNotFound) {
		return nil, apperror.Storage(err)
	}

	if rating < 1 || rating > 5 {
		return nil, apperror.ErrInvalidRating.WithDetails(map[string]interface{}{"rating": rating})
	}
	normalized, err := validation.OptionalText("комментарий", comment, validation.MaxCommentLength)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		WorkerID:   booking.WorkerID,
		Rating:     rating,
		Comment:    normalized,
	}
	aggregate, err := s.reviews.CreateWithAggregate(ctx, review)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateReview):
			metrics.RecordDuplicate("review")
			logger.Log.WithField("booking_id", bookingID).Warn("review: повторный отзыв отклонён")
			return nil, apperror.ErrDuplicateReview
		case errors.Is(err, repository.ErrWorkerNotFound):
			return nil, apperror.ErrWorkerNotFound
		}
		// транзакция могла закоммититься, агрегат в кэше больше не доверяем
		if s.cache != nil {
			s.cache.Invalidate(ctx, booking.WorkerID)
		}
		return nil, apperror.Storage(err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, aggregate)
	}

	logger.Log.WithFields(logrus.Fields{
		"booking_id":    bookingID,
		"worker_id":     booking.WorkerID,
		"rating":        rating,
		"worker_rating": aggregate.Rating.StringFixed(2),
		"total_reviews": aggregate.TotalReviews,
	}).Info("review: отзыв добавлен")
	metrics.ReviewsAddedTotal.Inc()
	publishEvent(ctx, s.publisher, events.New(events.TypeReviewAdded, bookingID, customerID, map[string]interface{}{
		"review":        review,
		"worker_rating": aggregate,
	}).ForParties(booking.CustomerID, booking.WorkerID))

	return &ReviewResult{Review: review, WorkerRating: aggregate}, nil
}

// WorkerRating возвращает агрегат рейтинга исполнителя, сначала из кэша.
func (s *ReviewService) WorkerRating(ctx context.Context, workerID int64) (*models.WorkerRating, error) {
	if s.cache != nil {
		if rating, ok := s.cache.Get(ctx, workerID); ok {
			return rating, nil
		}
	}

	rating, err := s.workers.GetRating(ctx, workerID)
	if err != nil {
		if errors.Is(err, repository.ErrWorkerNotFound) {
			return nil, apperror.ErrWorkerNotFound
		}
		return nil, apperror.Storage(err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, rating)
	}
	return rating, nil
}

// ListWorkerReviews возвращает отзывы исполнителя, новые первыми.
func (s *ReviewService) ListWorkerReviews(ctx context.Context, workerID int64, limit, offset int) (*WorkerReviews, error) {
	rating, err := s.WorkerRating(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	reviews, err := s.reviews.ListByWorker(ctx, workerID, limit, offset)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return &WorkerReviews{Rating: rating, Reviews: reviews}, nil
}
