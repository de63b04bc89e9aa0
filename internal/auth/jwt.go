// Package auth issues and validates the bearer tokens the external scheduler
// presents when triggering a run over HTTP.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents trigger-token JWT claims
type Claims struct {
	Scheduler string `json:"scheduler"`
	jwt.RegisteredClaims
}

// Auth handles trigger-token logic
type Auth struct {
	secret   []byte
	tokenTTL time.Duration
}

// NewAuth creates a new Auth instance
func NewAuth(secret string, tokenTTL time.Duration) *Auth {
	return &Auth{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// GenerateTriggerToken generates a JWT the scheduler can use to call the
// trigger endpoint
func (a *Auth) GenerateTriggerToken(scheduler string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Scheduler: scheduler,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "macjanitor",
			Subject:   scheduler,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateTriggerToken validates and parses a trigger token
func (a *Auth) ValidateTriggerToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
