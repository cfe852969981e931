package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/services-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/services-marketplace/internal/dto"
	"github.com/ignatzorin/services-marketplace/internal/http/handlers/common"
	"github.com/ignatzorin/services-marketplace/internal/models"
	"github.com/ignatzorin/services-marketplace/internal/service"
)

type bookingService interface {
	CreateBooking(ctx context.Context, in service.CreateBookingInput) (*models.Booking, error)
	TransitionBooking(ctx context.Context, bookingID, actorID int64, actorRole valueobject.Role, requested string) (*service.TransitionResult, error)
	GetBooking(ctx context.Context, bookingID, userID int64) (*models.Booking, error)
	ListMyBookings(ctx context.Context, userID int64, role valueobject.Role, status string, limit, offset int) (*service.BookingList, error)
	ListEvents(ctx context.Context, bookingID, userID int64) ([]models.BookingEvent, error)
}

type BookingHandler struct {
	bookings bookingService
}

func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// CreateBooking POST /bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, role, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "worker_id, service_type, booking_date, start_time и end_time обязательны")
		return
	}

	booking, err := h.bookings.CreateBooking(c.Request.Context(), service.CreateBookingInput{
		CustomerID:  userID,
		ActorRole:   role,
		WorkerID:    req.WorkerID,
		ServiceType: req.ServiceType,
		BookingDate: req.BookingDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListMyBookings GET /bookings/my
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID, role, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	limit, offset := common.GetPagination(c)
	list, err := h.bookings.ListMyBookings(c.Request.Context(), userID, role, c.Query("status"), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetBooking GET /bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
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

	booking, err := h.bookings.GetBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// UpdateStatus PUT /bookings/:id/status
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	userID, role, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	bookingID, err := common.ParseIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "status обязателен")
		return
	}

	result, err := h.bookings.TransitionBooking(c.Request.Context(), bookingID, userID, role, req.Status)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListEvents GET /bookings/:id/events
func (h *BookingHandler) ListEvents(c *gin.Context) {
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

	history, err := h.bookings.ListEvents(c.Request.Context(), bookingID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BookingEventsResponse{BookingID: bookingID, Events: history})
}
