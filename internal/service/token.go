package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ignatzorin/services-marketplace/internal/domain/valueobject"
)

var ErrInvalidSubject = errors.New("token subject is not a user id")

// TokenManager проверяет access токены, выпущенные сервисом авторизации.
// Из токена берутся только id пользователя (sub) и роль (role).
type TokenManager struct {
	accessSecret []byte
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(accessSecret string) *TokenManager {
	return &TokenManager{accessSecret: []byte(accessSecret)}
}

// ParseAccess извлекает userID и роль из access токена. Токен без exp невалиден.
func (m *TokenManager) ParseAccess(token string) (int64, valueobject.Role, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return m.accessSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, "", err
	}
	if !parsed.Valid {
		return 0, "", jwt.ErrTokenInvalidClaims
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", jwt.ErrTokenInvalidClaims
	}

	userID, err := subjectID(claims["sub"])
	if err != nil {
		return 0, "", err
	}

	rawRole, _ := claims["role"].(string)
	role, err := valueobject.NewRole(rawRole)
	if err != nil {
		return 0, "", err
	}

	return userID, role, nil
}

// IssueAccess выпускает access токен. Нужен для тестов и локальной отладки,
// в бою токены выпускает сервис авторизации.
func (m *TokenManager) IssueAccess(userID int64, role valueobject.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.accessSecret)
}

// subjectID принимает sub как строку или число.
func subjectID(raw interface{}) (int64, error) {
	var id int64
	switch v := raw.(type) {
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, ErrInvalidSubject
		}
		id = parsed
	case float64:
		if v != float64(int64(v)) {
			return 0, ErrInvalidSubject
		}
		id = int64(v)
	default:
		return 0, ErrInvalidSubject
	}
	if id <= 0 {
		return 0, ErrInvalidSubject
	}
	return id, nil
}
