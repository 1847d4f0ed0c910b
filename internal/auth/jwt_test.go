package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(
		"test-secret-key-for-testing-purposes",
		15*time.Minute,
		7*24*time.Hour,
	)
}

func testUser() User {
	return User{ID: 424242, FirstName: "Анна", Username: "anna"}
}

func TestNewJWTService(t *testing.T) {
	service := newTestJWTService()
	assert.NotNil(t, service)
	assert.Equal(t, 15*time.Minute, service.GetAccessTokenExpiry())
	assert.Equal(t, 7*24*time.Hour, service.GetRefreshTokenExpiry())
}

func TestValidateSecret(t *testing.T) {
	assert.ErrorIs(t, ValidateSecret("short"), ErrWeakSecret)
	assert.NoError(t, ValidateSecret("test-secret-key-for-testing-purposes"))
}

func TestJWTService_GenerateAccessToken_Success(t *testing.T) {
	service := newTestJWTService()

	token, expiresAt, err := service.GenerateAccessToken(testUser(), RoleCustomer)

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))
	assert.True(t, expiresAt.Before(time.Now().Add(16*time.Minute)))
}

func TestJWTService_ValidateAccessToken_Valid(t *testing.T) {
	service := newTestJWTService()

	token, _, err := service.GenerateAccessToken(testUser(), RoleAdmin)
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)

	require.NoError(t, err)
	assert.Equal(t, int64(424242), claims.TelegramUserID)
	assert.Equal(t, "anna", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "tg:424242", claims.SessionKey())
	assert.False(t, claims.Anonymous())
	assert.Equal(t, &User{ID: 424242, FirstName: "Анна", Username: "anna"}, claims.User())
}

func TestJWTService_AnonymousToken(t *testing.T) {
	service := newTestJWTService()

	token, _, err := service.GenerateAnonymousToken("abc")
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)

	require.NoError(t, err)
	assert.True(t, claims.Anonymous())
	assert.Nil(t, claims.User())
	assert.Equal(t, "anon:abc", claims.SessionKey())
	assert.Equal(t, RoleCustomer, claims.Role)
}

func TestJWTService_ValidateAccessToken_Expired(t *testing.T) {
	service := NewJWTService("test-secret-key-for-testing-purposes", -1*time.Minute, 7*24*time.Hour)

	token, _, err := service.GenerateAccessToken(testUser(), RoleCustomer)
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateAccessToken_Invalid(t *testing.T) {
	service := newTestJWTService()

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage", "not-a-jwt"},
		{"malformed", "a.b.c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTService_ValidateAccessToken_WrongSignature(t *testing.T) {
	service1 := newTestJWTService()
	service2 := NewJWTService("different-secret-key-for-testing-123", 15*time.Minute, 7*24*time.Hour)

	token, _, err := service1.GenerateAccessToken(testUser(), RoleCustomer)
	require.NoError(t, err)

	claims, err := service2.ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateAccessToken_WrongAlgorithm(t *testing.T) {
	service := newTestJWTService()

	claims := Claims{
		TelegramUserID: 1,
		Role:           RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "tg:1",
			Audience:  jwt.ClaimStrings{audienceAccess},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	result, err := service.ValidateAccessToken(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, result)
}

func TestJWTService_GenerateRefreshToken_Success(t *testing.T) {
	service := newTestJWTService()

	token, expiresAt, err := service.GenerateRefreshToken(424242)

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now().Add(6*24*time.Hour)))
}

func TestJWTService_ValidateRefreshToken_Valid(t *testing.T) {
	service := newTestJWTService()

	token, _, err := service.GenerateRefreshToken(424242)
	require.NoError(t, err)

	id, err := service.ValidateRefreshToken(token)

	require.NoError(t, err)
	assert.Equal(t, int64(424242), id)
}

func TestJWTService_ValidateRefreshToken_Expired(t *testing.T) {
	service := NewJWTService("test-secret-key-for-testing-purposes", 15*time.Minute, -1*time.Minute)

	token, _, err := service.GenerateRefreshToken(424242)
	require.NoError(t, err)

	id, err := service.ValidateRefreshToken(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Zero(t, id)
}

func TestJWTService_ValidateRefreshToken_Invalid(t *testing.T) {
	service := newTestJWTService()

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		id, err := service.ValidateRefreshToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Zero(t, id)
	}
}

func TestJWTService_CannotMixTokenKinds(t *testing.T) {
	service := newTestJWTService()

	refresh, _, err := service.GenerateRefreshToken(424242)
	require.NoError(t, err)
	access, _, err := service.GenerateAccessToken(testUser(), RoleCustomer)
	require.NoError(t, err)
	remember, _, err := service.GenerateRememberToken(testUser())
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = service.ValidateAccessToken(remember)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = service.ValidateRememberToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = service.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RememberToken(t *testing.T) {
	service := newTestJWTService()

	token, expiresAt, err := service.GenerateRememberToken(testUser())
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now().Add(6*24*time.Hour)))

	claims, err := service.ValidateRememberToken(token)

	require.NoError(t, err)
	assert.Equal(t, int64(424242), claims.TelegramUserID)
	assert.Equal(t, "Анна", claims.FirstName)
}
