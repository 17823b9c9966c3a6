package jwtauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "unit-test-signing-key"

func sign(t *testing.T, claims Claims, key string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	v := NewValidator(testKey)

	t.Run("valid token", func(t *testing.T) {
		token := sign(t, Claims{
			UserID: "42",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}, testKey)

		claims, err := v.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "42", claims.UserID)
	})

	t.Run("expired token", func(t *testing.T) {
		token := sign(t, Claims{
			UserID: "42",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}, testKey)

		_, err := v.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		token := sign(t, Claims{UserID: "42"}, "other-key")

		_, err := v.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing user id", func(t *testing.T) {
		token := sign(t, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}, testKey)

		_, err := v.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := v.ValidateToken("definitely.not.ajwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
