package dto

// CreateBookingRequest represents the request to book a worker
type CreateBookingRequest struct {
	WorkerID    int64   `json:"worker_id" binding:"required,gt=0"`
	ServiceType string  `json:"service_type" binding:"required"`
	BookingDate string  `json:"booking_date" binding:"required"`
	StartTime   string  `json:"start_time" binding:"required"`
	EndTime     string  `json:"end_time" binding:"required"`
	Description *string `json:"description"`
}

// UpdateBookingStatusRequest represents the request to move a booking to another status
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// RecordPaymentRequest represents the request to record a payment for a booking
type RecordPaymentRequest struct {
	BookingID     int64  `json:"booking_id" binding:"required,gt=0"`
	PaymentMethod string `json:"payment_method"`
	TransactionID string `json:"transaction_id"`
}

// AddReviewRequest represents the request to review a completed booking
type AddReviewRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}
