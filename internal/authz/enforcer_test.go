// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package authz

import "testing"

func TestEmbeddedPolicy(t *testing.T) {
	e, err := NewEnforcer(nil)
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}

	cases := []struct {
		role   string
		path   string
		method string
		want   bool
	}{
		{"admin", "/api/v1/admin/coins/c1/approve", "POST", true},
		{"admin", "/api/v1/admin/coins/c1", "DELETE", true},
		{"user", "/api/v1/admin/coins/c1/approve", "POST", false},
		{"user", "/api/v1/users/me/favorites", "GET", true},
		{"user", "/api/v1/coins", "POST", true},
		{"user", "/api/v1/coins/c1/favorite", "POST", true},
		// Role hierarchy: admin inherits user routes.
		{"admin", "/api/v1/users/me/coins", "GET", true},
		// Empty role falls back to "user".
		{"", "/api/v1/admin/coins/c1/approve", "POST", false},
		{"", "/api/v1/users/me/coins", "GET", true},
	}
	for _, tc := range cases {
		got, err := e.Enforce(tc.role, tc.path, tc.method)
		if err != nil {
			t.Fatalf("Enforce(%s, %s, %s): %v", tc.role, tc.path, tc.method, err)
		}
		if got != tc.want {
			t.Errorf("Enforce(%q, %s, %s) = %v, want %v", tc.role, tc.path, tc.method, got, tc.want)
		}
	}
}
