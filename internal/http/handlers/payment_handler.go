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

type paymentService interface {
	RecordPayment(ctx context.Context, in service.RecordPaymentInput) (*service.PaymentResult, error)
	PaymentRequestURI(ctx context.Context, bookingID, userID int64) (string, error)
	CheckPayment(ctx context.Context, bookingID, userID int64) (*service.PaymentCheck, error)
	ListMyPayments(ctx context.Context, userID int64, role valueobject.Role) ([]models.PaymentWithBooking, error)
}

type PaymentHandler struct {
	payments paymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// RecordPayment POST /payments
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "booking_id обязателен")
		return
	}

	result, err := h.payments.RecordPayment(c.Request.Context(), service.RecordPaymentInput{
		BookingID:     req.BookingID,
		ActorID:       userID,
		Method:        req.PaymentMethod,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// PaymentRequest GET /payments/qr-code/:bookingId
func (h *PaymentHandler) PaymentRequest(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	bookingID, err := common.ParseIDParam(c, "bookingId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	uri, err := h.payments.PaymentRequestURI(c.Request.Context(), bookingID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaymentRequestResponse{BookingID: bookingID, URI: uri})
}

// CheckPayment GET /payments/check/:bookingId
func (h *PaymentHandler) CheckPayment(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	bookingID, err := common.ParseIDParam(c, "bookingId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	check, err := h.payments.CheckPayment(c.Request.Context(), bookingID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, check)
}

// ListMyPayments GET /payments/my
func (h *PaymentHandler) ListMyPayments(c *gin.Context) {
	userID, role, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	payments, err := h.payments.ListMyPayments(c.Request.Context(), userID, role)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaymentHistoryResponse{Payments: payments, Count: len(payments)})
}
