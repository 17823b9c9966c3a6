// Package jwtauth validates access tokens issued by the upstream identity
// provider. The gateway never issues tokens; it only needs a verified
// principal id to key rate limits by user instead of IP.
package jwtauth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every validation failure. Callers fall back to
// IP-based identity instead of rejecting the request.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the token claims the gateway cares about.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Validator checks HS256 access tokens against a shared signing key.
type Validator struct {
	signingKey []byte
}

// NewValidator creates a validator with the given signing key.
func NewValidator(signingKey string) *Validator {
	return &Validator{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies the token, returning its claims.
func (v *Validator) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
