package common

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/services-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/services-marketplace/internal/dto"
	"github.com/ignatzorin/services-marketplace/internal/http/middleware"
	"github.com/ignatzorin/services-marketplace/internal/pkg/apperror"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var (
	ErrUserNotFound = errors.New("пользователь не найден в контексте")
	ErrInvalidID    = errors.New("неверный формат id")
)

// CurrentUserID возвращает id аутентифицированного пользователя.
func CurrentUserID(c *gin.Context) (int64, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return 0, ErrUserNotFound
	}
	return p.UserID, nil
}

// CurrentUser пишет 401 и возвращает false, если участник не аутентифицирован
// или роль в токене не из допустимых.
func CurrentUser(c *gin.Context) (int64, valueobject.Role, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok || !p.Role.IsValid() {
		RespondUnauthorized(c, ErrUserNotFound.Error())
		return 0, "", false
	}
	return p.UserID, p.Role, true
}

// ParseIDParam читает положительный int64 из параметра пути.
func ParseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

func RespondAppError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}

func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "требуется авторизация"
	}
	c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Code: string(apperror.ErrCodeUnauthorized), Error: message})
}

func RespondBadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "некорректный запрос"
	}
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: string(apperror.ErrCodeValidation), Error: message})
}

// GetPagination читает limit и offset. Мусор в query не ошибка, а значение по умолчанию.
func GetPagination(c *gin.Context) (limit, offset int) {
	limit = queryInt(c, "limit", defaultPageSize)
	offset = queryInt(c, "offset", 0)
	switch {
	case limit < 1:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func queryInt(c *gin.Context, key string, fallback int) int {
	parsed, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return parsed
}
