package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/services-marketplace/internal/config"
	"github.com/ignatzorin/services-marketplace/internal/http/handlers"
	"github.com/ignatzorin/services-marketplace/internal/http/middleware"
	"github.com/ignatzorin/services-marketplace/internal/service"
)

// SetupRouter собирает HTTP API. limiterStore может быть nil, тогда лимиты считаются в памяти процесса.
func SetupRouter(
	cfg *config.Config,
	tokenManager *service.TokenManager,
	limiterStore limiter.Store,
	healthHandler *handlers.HealthHandler,
	bookingHandler *handlers.BookingHandler,
	paymentHandler *handlers.PaymentHandler,
	reviewHandler *handlers.ReviewHandler,
	wsHandler *handlers.WSHandler,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", middleware.PrometheusHandler())

	api := r.Group("/api")

	// Лента событий бронирований. Токен передаётся в query.
	api.GET("/ws", wsHandler.Handle)

	// Публичные данные об исполнителях
	workers := api.Group("/workers")
	{
		workers.GET("/:id/reviews", middleware.IDValidator("id"), reviewHandler.ListWorkerReviews)
		workers.GET("/:id/rating", middleware.IDValidator("id"), reviewHandler.WorkerRating)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokenManager))

	bookings := protected.Group("/bookings")
	{
		bookings.POST("", bookingHandler.CreateBooking)
		bookings.GET("/my", bookingHandler.ListMyBookings)
		bookings.GET("/:id", middleware.IDValidator("id"), bookingHandler.GetBooking)
		bookings.PUT("/:id/status", middleware.IDValidator("id"), bookingHandler.UpdateStatus)
		bookings.GET("/:id/events", middleware.IDValidator("id"), bookingHandler.ListEvents)
		bookings.POST("/:id/review", middleware.IDValidator("id"), reviewHandler.AddReview)
	}

	payments := protected.Group("/payments")
	{
		payments.POST("", middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod, limiterStore), paymentHandler.RecordPayment)
		payments.GET("/my", paymentHandler.ListMyPayments)
		payments.GET("/qr-code/:bookingId", middleware.IDValidator("bookingId"), paymentHandler.PaymentRequest)
		payments.GET("/check/:bookingId", middleware.IDValidator("bookingId"), paymentHandler.CheckPayment)
	}

	return r
}
