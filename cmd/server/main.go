package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/services-marketplace/internal/cache"
	"github.com/ignatzorin/services-marketplace/internal/config"
	"github.com/ignatzorin/services-marketplace/internal/db"
	"github.com/ignatzorin/services-marketplace/internal/events"
	httpHandlers "github.com/ignatzorin/services-marketplace/internal/http/handlers"
	"github.com/ignatzorin/services-marketplace/internal/http/middleware"
	httpRouter "github.com/ignatzorin/services-marketplace/internal/http/router"
	"github.com/ignatzorin/services-marketplace/internal/logger"
	"github.com/ignatzorin/services-marketplace/internal/repository"
	"github.com/ignatzorin/services-marketplace/internal/service"
	"github.com/ignatzorin/services-marketplace/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.Env)

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Redis необязателен: без него кэш и лимиты живут в памяти процесса.
	var (
		rdb          *redis.Client
		ratingCache  service.RatingCache
		limiterStore limiter.Store
	)
	if cfg.RedisURL != "" {
		rdb, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("main: ошибка подключения к redis: %v", err)
		}
		defer safeCloseRedis(rdb)

		ratingCache = cache.NewRedisRatingCache(rdb, cfg.RatingCacheTTL)
		limiterStore, err = middleware.NewRedisLimiterStore(rdb, "limiter:payments")
		if err != nil {
			log.Fatalf("main: ошибка настройки rate limiter: %v", err)
		}
	} else {
		ratingCache = cache.NewMemoryRatingCache(ctx, cfg.RatingCacheTTL)
	}

	// Доменные события.
	var publisher events.Publisher = events.LogPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.NewSyncProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("main: ошибка подключения к kafka: %v", err)
		}
		kafkaPublisher := events.NewKafkaPublisher(producer, cfg.KafkaTopic)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Printf("main: ошибка закрытия kafka producer: %v", err)
			}
		}()
		publisher = events.NewAsyncPublisher(kafkaPublisher)
	}

	// Вебсокеты: участники бронирований получают события в реальном времени.
	hub := ws.NewHub()
	go hub.Run(ctx)
	publisher = events.MultiPublisher{publisher, hub}

	tokenManager := service.NewTokenManager(cfg.JWTSecret)

	// Репозитории.
	bookingRepo := repository.NewBookingRepository(dbConn)
	bookingEventRepo := repository.NewBookingEventRepository(dbConn)
	workerRepo := repository.NewWorkerRepository(dbConn)
	paymentRepo := repository.NewPaymentRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)

	// Сервисы.
	bookingService := service.NewBookingService(bookingRepo, workerRepo, bookingEventRepo, publisher)
	paymentService := service.NewPaymentService(paymentRepo, bookingRepo, service.PayeeConfig{
		ID:   cfg.UPIPayeeID,
		Name: cfg.UPIPayeeName,
	}, publisher)
	reviewService := service.NewReviewService(reviewRepo, bookingRepo, workerRepo, ratingCache, publisher)

	// HTTP хэндлеры.
	healthHandler := httpHandlers.NewHealthHandler(dbConn, rdb)
	bookingHandler := httpHandlers.NewBookingHandler(bookingService)
	paymentHandler := httpHandlers.NewPaymentHandler(paymentService)
	reviewHandler := httpHandlers.NewReviewHandler(reviewService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, tokenManager, limiterStore, healthHandler, bookingHandler, paymentHandler, reviewHandler, wsHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}

func safeCloseRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		log.Printf("main: ошибка закрытия redis: %v", err)
	}
}
