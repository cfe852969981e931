package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/services-marketplace/internal/dto"
	"github.com/ignatzorin/services-marketplace/internal/pkg/apperror"
)

// IDValidator проверяет, что параметр с указанным именем является положительным целым id.
// Использование: router.GET("/bookings/:id", IDValidator("id"), handler.GetBooking)
func IDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param(paramName)
		if idStr == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
				Code:  string(apperror.ErrCodeValidation),
				Error: "параметр " + paramName + " обязателен",
			})
			return
		}

		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
				Code:  string(apperror.ErrCodeValidation),
				Error: "параметр " + paramName + " должен быть положительным целым числом",
			})
			return
		}

		c.Next()
	}
}
