package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/ignatzorin/services-marketplace/internal/logger"
)

const healthCheckTimeout = 3 * time.Second

// HealthCheck проверяет одну зависимость сервиса.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

// NewHealthHandler проверяет базу и, если он настроен, Redis. rdb может быть nil.
func NewHealthHandler(db *sqlx.DB, rdb *redis.Client) *HealthHandler {
	h := &HealthHandler{checks: map[string]HealthCheck{"database": db.PingContext}}
	if rdb != nil {
		h.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return h
}

type DependencyStatus struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status    string                      `json:"status"`
	Timestamp time.Time                   `json:"timestamp"`
	Checks    map[string]DependencyStatus `json:"checks"`
}

// Health обрабатывает GET /health. Зависимости опрашиваются параллельно,
// любая недоступная переводит сервис в unhealthy и ответ 503.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]DependencyStatus, len(h.checks)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, check := range h.checks {
		wg.Add(1)
		go func(name string, check HealthCheck) {
			defer wg.Done()
			st := runCheck(ctx, check)
			mu.Lock()
			resp.Checks[name] = st
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	code := http.StatusOK
	for name, st := range resp.Checks {
		if st.Status != "healthy" {
			resp.Status = "unhealthy"
			code = http.StatusServiceUnavailable
			logger.Log.WithField("dependency", name).Warnf("health: %s", st.Error)
		}
	}
	c.JSON(code, resp)
}

func runCheck(ctx context.Context, check HealthCheck) DependencyStatus {
	started := time.Now()
	err := check(ctx)
	st := DependencyStatus{Status: "healthy", LatencyMS: time.Since(started).Milliseconds()}
	if err != nil {
		st.Status = "unhealthy"
		st.Error = err.Error()
	}
	return st
}
