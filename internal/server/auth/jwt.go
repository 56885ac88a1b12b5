// Package auth issues and validates the two HS256 token kinds used by the
// HTTP layer: the session token carried in a cookie after OTP verification,
// and the short-lived upload token embedded in generated upload links. The
// two are scoped so one can never stand in for the other.
package auth

import (
	"errors"
	"time"

	"github.com/dkrylov/medvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Scope restricts what a token is good for.
type Scope string

const (
	ScopeSession Scope = "session"
	ScopeUpload  Scope = "upload"
)

type Claims struct {
	jwt.RegisteredClaims
	PhoneNumber string `json:"phone"`
	Scope       Scope  `json:"scope"`
}

func GenerateToken(phoneNumber string, scope Scope, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		PhoneNumber: phoneNumber,
		Scope:       scope,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetPhoneFromToken validates tokenString and returns the phone number it
// was issued for. A token with the wrong scope is rejected the same way as
// a forged one.
func GetPhoneFromToken(tokenString string, scope Scope, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Scope != scope || claims.PhoneNumber == "" {
		return "", common.ErrInvalidToken
	}

	return claims.PhoneNumber, nil
}
