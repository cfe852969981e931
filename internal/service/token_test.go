package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/services-marketplace/internal/domain/valueobject"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret")

	token, err := tm.IssueAccess(42, valueobject.RoleWorker, time.Minute)
	require.NoError(t, err)

	userID, role, err := tm.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, valueobject.RoleWorker, role)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("one").IssueAccess(42, valueobject.RoleCustomer, time.Minute)
	require.NoError(t, err)

	_, _, err = NewTokenManager("two").ParseAccess(token)
	assert.Error(t, err)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager("test-secret")
	token, err := tm.IssueAccess(42, valueobject.RoleCustomer, -time.Minute)
	require.NoError(t, err)

	_, _, err = tm.ParseAccess(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenManager_NumericSubject(t *testing.T) {
	tm := NewTokenManager("test-secret")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  7,
		"role": "customer",
		"exp":  time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	userID, role, err := tm.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
	assert.Equal(t, valueobject.RoleCustomer, role)
}

func TestTokenManager_RejectsBadClaims(t *testing.T) {
	tm := NewTokenManager("test-secret")

	sign := func(claims jwt.MapClaims) string {
		claims["exp"] = time.Now().Add(time.Minute).Unix()
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return s
	}

	_, _, err := tm.ParseAccess(sign(jwt.MapClaims{"sub": "abc", "role": "customer"}))
	assert.ErrorIs(t, err, ErrInvalidSubject)

	_, _, err = tm.ParseAccess(sign(jwt.MapClaims{"sub": "0", "role": "customer"}))
	assert.ErrorIs(t, err, ErrInvalidSubject)

	_, _, err = tm.ParseAccess(sign(jwt.MapClaims{"sub": "5", "role": "admin"}))
	assert.Error(t, err)
}

func TestTokenManager_RequiresExpiration(t *testing.T) {
	tm := NewTokenManager("test-secret")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "42",
		"role": "customer",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, _, err = tm.ParseAccess(token)
	assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)
}
