// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package middleware holds the HTTP middleware shared across routes:
// identity resolution, authorization, and request metrics.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/coindeck/coindeck/internal/auth"
	"github.com/coindeck/coindeck/internal/authz"
	"github.com/coindeck/coindeck/internal/logging"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID string
	Role   string
}

// IdentityFrom extracts the caller identity, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// Resolve parses an optional bearer token and attaches the identity.
// An absent or invalid token leaves the request anonymous; routes that
// need identity gate on it with Require.
func Resolve(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := jwtManager.ValidateToken(token)
			if err != nil {
				logging.Debug().Err(err).Msg("Rejected bearer token")
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, Identity{
				UserID: claims.UserID,
				Role:   claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require rejects anonymous requests with 401.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFrom(r.Context()); !ok {
			http.Error(w, `{"status":"error","error":{"code":"UNAUTHORIZED","message":"authentication required"}}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Authorize enforces the casbin policy for the authenticated role
// against the request path and method. Runs after Require.
func Authorize(enforcer *authz.Enforcer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _ := IdentityFrom(r.Context())
			allowed, err := enforcer.Enforce(id.Role, r.URL.Path, r.Method)
			if err != nil {
				logging.Error().Err(err).Msg("Authorization check failed")
				http.Error(w, `{"status":"error","error":{"code":"INTERNAL","message":"authorization unavailable"}}`, http.StatusInternalServerError)
				return
			}
			if !allowed {
				http.Error(w, `{"status":"error","error":{"code":"FORBIDDEN","message":"insufficient role"}}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
