// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package auth issues and validates the stateless JWT tokens that
// identify platform users. Tokens carry a user ID and a role; the role
// feeds the casbin enforcer on admin routes.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/coindeck/coindeck/internal/config"
)

// Claims are the platform's JWT claims. UserID is the stable identity
// used for ownership, favorites and the per-user cache keys.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager creates and validates HS256-signed tokens.
//
// Tokens are stateless and cannot be revoked before expiration; the
// lifetime comes from config (24h default).
type JWTManager struct {
	secret   []byte
	lifetime time.Duration
}

// NewJWTManager builds a manager from the auth configuration. The
// secret must be at least 32 bytes; config validation enforces this
// before we get here, but the check is repeated for direct callers.
func NewJWTManager(cfg *config.AuthConfig) (*JWTManager, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("auth.jwt_secret must be at least 32 bytes")
	}
	lifetime := cfg.TokenLifetime
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &JWTManager{secret: []byte(cfg.JWTSecret), lifetime: lifetime}, nil
}

// GenerateToken signs a token for userID with the given role.
func (m *JWTManager) GenerateToken(userID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signedToken, nil
}

// ValidateToken parses and verifies a token string. The signing method
// is pinned to HMAC to rule out algorithm confusion; expiry and
// not-before are checked by the parser.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token has no user ID")
	}
	return claims, nil
}
