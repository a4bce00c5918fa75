package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenClaims represents the claims in an API access token.
type SessionTokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// ValidateToken validates a signed JWT and returns its claims.
func ValidateToken(tokenString string, secret []byte) (*SessionTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionTokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ExtractTokenFromHeader extracts the token from the Authorization header.
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return "", errors.New("invalid authorization header format")
	}
	return authHeader[7:], nil
}
