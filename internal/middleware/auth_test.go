// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coindeck/coindeck/internal/auth"
	"github.com/coindeck/coindeck/internal/authz"
	"github.com/coindeck/coindeck/internal/config"
)

func jwtManager(t *testing.T) *auth.JWTManager {
	t.Helper()
	m, err := auth.NewJWTManager(&config.AuthConfig{JWTSecret: strings.Repeat("s", 32)})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func identityEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := IdentityFrom(r.Context()); ok {
			w.Header().Set("X-User", id.UserID)
			w.Header().Set("X-Role", id.Role)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestResolveAttachesIdentity(t *testing.T) {
	m := jwtManager(t)
	token, err := m.GenerateToken("u1", "admin")
	if err != nil {
		t.Fatal(err)
	}

	h := Resolve(m)(identityEcho(t))
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("X-User") != "u1" || rec.Header().Get("X-Role") != "admin" {
		t.Errorf("identity not attached: %v", rec.Header())
	}
}

func TestResolveLeavesAnonymousOnBadToken(t *testing.T) {
	h := Resolve(jwtManager(t))(identityEcho(t))
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("invalid token must pass through anonymously, got %d", rec.Code)
	}
	if rec.Header().Get("X-User") != "" {
		t.Error("no identity expected for an invalid token")
	}
}

func TestRequireRejectsAnonymous(t *testing.T) {
	h := Require(identityEcho(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthorizeGatesAdminRoutes(t *testing.T) {
	m := jwtManager(t)
	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		t.Fatal(err)
	}

	h := Resolve(m)(Require(Authorize(enforcer)(identityEcho(t))))

	for _, tc := range []struct {
		role string
		want int
	}{
		{"admin", http.StatusOK},
		{"user", http.StatusForbidden},
	} {
		token, err := m.GenerateToken("u1", tc.role)
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/coins/c1/approve", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("role %s: status = %d, want %d", tc.role, rec.Code, tc.want)
		}
	}
}
