package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/services-marketplace/internal/dto"
	"github.com/ignatzorin/services-marketplace/internal/logger"
	"github.com/ignatzorin/services-marketplace/internal/pkg/apperror"
)

const internalErrorMessage = "внутренняя ошибка сервера"

// ErrorHandler обрабатывает ошибки централизованно.
// Срабатывает, если обработчик добавил ошибку через c.Error и не записал ответ.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Проверяем, не был ли уже отправлен ответ
		if c.Writer.Written() {
			return
		}

		if len(c.Errors) > 0 {
			WriteError(c, c.Errors.Last().Err)
		}
	}
}

// WriteError отдаёт ошибку клиенту в формате {"code","error","details"}.
// Бизнес-ошибки логируются как warn, сбои хранилища и неизвестные ошибки как error
// и не раскрывают клиенту подробностей.
func WriteError(c *gin.Context, err error) {
	fields := logrus.Fields{
		"error":  err.Error(),
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
	}
	if requestID, ok := c.Get(ContextRequestIDKey); ok {
		fields["request_id"] = requestID
	}

	appErr, ok := apperror.As(err)
	if !ok {
		logger.Log.WithFields(fields).Error("Request error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
			Code:  string(apperror.ErrCodeInternal),
			Error: internalErrorMessage,
		})
		return
	}

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Log.WithFields(fields).Error("Request error")
		c.AbortWithStatusJSON(appErr.HTTPStatus, dto.ErrorResponse{
			Code:  string(appErr.Code),
			Error: appErr.Message,
		})
		return
	}

	fields["code"] = appErr.Code
	logger.Log.WithFields(fields).Warn("Request rejected")
	c.AbortWithStatusJSON(appErr.HTTPStatus, dto.ErrorResponse{
		Code:    string(appErr.Code),
		Error:   appErr.Message,
		Details: appErr.Details,
	})
}
