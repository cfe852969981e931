package dto

import (
	"github.com/ignatzorin/services-marketplace/internal/models"
)

// PaymentRequestResponse represents a UPI payment link for QR rendering
type PaymentRequestResponse struct {
	BookingID int64  `json:"booking_id"`
	URI       string `json:"upi_uri"`
}

// PaymentHistoryResponse represents the caller's payments
type PaymentHistoryResponse struct {
	Payments []models.PaymentWithBooking `json:"payments"`
	Count    int                         `json:"count"`
}

// BookingEventsResponse represents the audit trail of a booking
type BookingEventsResponse struct {
	BookingID int64                 `json:"booking_id"`
	Events    []models.BookingEvent `json:"events"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string                 `json:"code,omitempty"`
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
