package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/ignatzorin/services-marketplace/internal/dto"
	"github.com/ignatzorin/services-marketplace/internal/logger"
)

// NewRedisLimiterStore создаёт общее для всех реплик хранилище счётчиков.
func NewRedisLimiterStore(rdb *redis.Client, prefix string) (limiter.Store, error) {
	return sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix:   prefix,
		MaxRetry: 3,
	})
}

// RateLimitMiddleware ограничивает частоту запросов, по умолчанию 10 в минуту.
// Без store счётчики живут в памяти процесса. Ключ: пользователь, если он известен, иначе IP.
func RateLimitMiddleware(limit int64, period time.Duration, store limiter.Store) gin.HandlerFunc {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = 1 * time.Minute
	}
	if store == nil {
		store = memory.NewStore()
	}

	rate := limiter.Rate{
		Period: period,
		Limit:  limit,
	}
	instance := limiter.New(store, rate)

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if p, ok := PrincipalFrom(c); ok {
			key = "user:" + strconv.FormatInt(p.UserID, 10)
		}

		quota, err := instance.Get(c.Request.Context(), key)
		if err != nil {
			// хранилище лимитов недоступно, запрос пропускаем
			logger.Log.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("rate limit: хранилище недоступно")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(quota.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(quota.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(quota.Reset, 10))

		if quota.Reached {
			c.Header("Retry-After", strconv.FormatInt(retryAfterSeconds(quota.Reset, time.Now()), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Code:  "RATE_LIMITED",
				Error: "слишком много запросов, попробуйте позже",
			})
			return
		}

		c.Next()
	}
}

// retryAfterSeconds не бывает меньше секунды, иначе клиент повторит запрос сразу.
func retryAfterSeconds(resetUnix int64, now time.Time) int64 {
	if wait := resetUnix - now.Unix(); wait > 1 {
		return wait
	}
	return 1
}
