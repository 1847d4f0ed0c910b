package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("admin-password")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcryptCost, cost)
	assert.NoError(t, VerifyAdminPassword("admin-password", hash))

	_, err = HashPassword("1234567")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestVerifyAdminPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Admin-Password"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  error
	}{
		{"correct", "Admin-Password", string(hash), nil},
		{"wrong", "wrong-password", string(hash), ErrInvalidCredentials},
		{"case sensitive", "admin-password", string(hash), ErrInvalidCredentials},
		{"empty password", "", string(hash), ErrInvalidCredentials},
		{"malformed hash", "Admin-Password", "not-a-hash", ErrInvalidCredentials},
		{"login disabled", "Admin-Password", "", ErrAdminLoginDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyAdminPassword(tt.password, tt.hash)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
