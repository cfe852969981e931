package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/services-marketplace/internal/dto"
	"github.com/ignatzorin/services-marketplace/internal/http/handlers/common"
	"github.com/ignatzorin/services-marketplace/internal/models"
	"github.com/ignatzorin/services-marketplace/internal/service"
)

type reviewService interface {
	AddReview(ctx context.Context, bookingID, customerID int64, rating int, comment *string) (*service.ReviewResult, error)
	WorkerRating(ctx context.Context, workerID int64) (*models.WorkerRating, error)
	ListWorkerReviews(ctx context.Context, workerID int64, limit, offset int) (*service.WorkerReviews, error)
}

type ReviewHandler struct {
	reviews reviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// AddReview POST /bookings/:id/review
func (h *ReviewHandler) AddReview(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	bookingID, err := common.ParseIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "некорректное тело запроса")
		return
	}

	result, err := h.reviews.AddReview(c.Request.Context(), bookingID, userID, req.Rating, req.Comment)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListWorkerReviews GET /workers/:id/reviews
func (h *ReviewHandler) ListWorkerReviews(c *gin.Context) {
	workerID, err := common.ParseIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	reviews, err := h.reviews.ListWorkerReviews(c.Request.Context(), workerID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// WorkerRating GET /workers/:id/rating
func (h *ReviewHandler) WorkerRating(c *gin.Context) {
	workerID, err := common.ParseIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	rating, err := h.reviews.WorkerRating(c.Request.Context(), workerID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, rating)
}
