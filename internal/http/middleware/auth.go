package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/services-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/services-marketplace/internal/dto"
	"github.com/ignatzorin/services-marketplace/internal/logger"
	"github.com/ignatzorin/services-marketplace/internal/pkg/apperror"
)

// Context ключи для gin.Context.
const (
	ContextUserIDKey = "userID"
	ContextRoleKey   = "role"
)

var (
	ErrMissingToken = errors.New("требуется авторизация")
	ErrInvalidToken = errors.New("токен невалиден")
)

// AccessTokenParser разбирает access токен в id пользователя и роль.
type AccessTokenParser interface {
	ParseAccess(token string) (int64, valueobject.Role, error)
}

// Principal участник запроса, которого удалось аутентифицировать.
type Principal struct {
	UserID int64
	Role   valueobject.Role
}

// Authenticate проверяет сырой токен. Роль вне customer/worker считается невалидным токеном.
func Authenticate(tokens AccessTokenParser, raw string) (Principal, error) {
	if raw == "" {
		return Principal{}, ErrMissingToken
	}
	userID, role, err := tokens.ParseAccess(raw)
	if err != nil || userID <= 0 || !role.IsValid() {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: userID, Role: role}, nil
}

// SetPrincipal кладёт участника в контекст запроса.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(ContextUserIDKey, p.UserID)
	c.Set(ContextRoleKey, p.Role)
}

// PrincipalFrom достаёт участника, положенного AuthMiddleware.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	rawID, _ := c.Get(ContextUserIDKey)
	userID, ok := rawID.(int64)
	if !ok || userID <= 0 {
		return Principal{}, false
	}
	rawRole, _ := c.Get(ContextRoleKey)
	role, ok := rawRole.(valueobject.Role)
	if !ok {
		return Principal{}, false
	}
	return Principal{UserID: userID, Role: role}, true
}

// AuthMiddleware требует заголовок Authorization: Bearer <access token>.
func AuthMiddleware(tokens AccessTokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := Authenticate(tokens, bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			logger.Log.WithField("path", c.FullPath()).Debugf("auth: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Code:  string(apperror.ErrCodeUnauthorized),
				Error: err.Error(),
			})
			return
		}

		SetPrincipal(c, principal)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
