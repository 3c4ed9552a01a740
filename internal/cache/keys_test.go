// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package cache

import (
	"strings"
	"testing"
)

func TestKeyDeterminism(t *testing.T) {
	// Two maps with the same entries built in different insertion order
	// must serialize identically.
	p1 := map[string]any{}
	p1["pageSize"] = 25
	p1["page"] = 1
	p1["chain"] = "bsc"

	p2 := map[string]any{}
	p2["chain"] = "bsc"
	p2["page"] = 1
	p2["pageSize"] = 25

	k1 := Key(KindCoinsApproved, p1)
	k2 := Key(KindCoinsApproved, p2)
	if k1 != k2 {
		t.Errorf("Semantically equal params produced different keys:\n%s\n%s", k1, k2)
	}
}

func TestKeyShape(t *testing.T) {
	type params struct {
		Page     int    `json:"page"`
		PageSize int    `json:"pageSize"`
		Chain    string `json:"chain,omitempty"`
	}

	key := Key(KindCoinsPending, params{Page: 2, PageSize: 25})
	want := `coinsPending:{"page":2,"pageSize":25}`
	if key != want {
		t.Errorf("Expected %s, got %s", want, key)
	}

	// Nil params: bare kind, used by the global promoted key.
	if got := Key(KeyPromoted, nil); got != "promoted" {
		t.Errorf("Expected bare promoted key, got %s", got)
	}
}

func TestUserKey(t *testing.T) {
	key := UserKey(KindUserFavorites, "user-42", map[string]int{"page": 1})
	if !strings.HasPrefix(key, "userFavorites:user-42:") {
		t.Errorf("Expected userFavorites:user-42: prefix, got %s", key)
	}

	// Per-user keys still fall under the kind prefix for invalidation.
	if !strings.HasPrefix(key, KindUserFavorites+":") {
		t.Errorf("Expected kind prefix for prefix deletion, got %s", key)
	}
}
