// Package tokens issues and validates the JWT session tokens used by
// the dashboard API.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims carries the tenant identity inside a session token.
type Claims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

type TokenGenerator struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenGenerator(secret string, ttl time.Duration) *TokenGenerator {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &TokenGenerator{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (tg *TokenGenerator) GenerateSessionToken(tenantID string) (string, error) {
	now := time.Now()
	claims := Claims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tg.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "netsentry",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tg.secret)
}

func (tg *TokenGenerator) ValidateSessionToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tg.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TenantID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
