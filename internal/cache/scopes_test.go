// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package cache

import (
	"context"
	"testing"
	"time"
)

func seedStore(t *testing.T, m *Memory) {
	t.Helper()
	ctx := context.Background()
	keys := []string{
		`coinsPending:{"page":1}`,
		`coinsApproved:{"page":1}`,
		`presale:{"page":1}`,
		`fairlaunch:{"page":1}`,
		`adminPromoted:{"page":1}`,
		`filtered:{"chain":"eth"}`,
		`userCoins:user-1:{"page":1}`,
		`userFavorites:user-1:{"page":1}`,
		"promoted",
		KeyTrending,
	}
	for _, k := range keys {
		if err := m.Set(ctx, k, []byte("v"), time.Minute); err != nil {
			t.Fatalf("seed %s: %v", k, err)
		}
	}
}

func gone(t *testing.T, m *Memory, key string) {
	t.Helper()
	if _, found, _ := m.Get(context.Background(), key); found {
		t.Errorf("Expected %s to be invalidated", key)
	}
}

func kept(t *testing.T, m *Memory, key string) {
	t.Helper()
	if _, found, _ := m.Get(context.Background(), key); !found {
		t.Errorf("Expected %s to survive", key)
	}
}

func TestInvalidateApproval(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	seedStore(t, m)

	inv := NewInvalidator(m, DefaultTable())
	if err := inv.Invalidate(context.Background(), ScopeApproval); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	// The next fetch of any pending/approved/user-coins page must miss.
	gone(t, m, `coinsPending:{"page":1}`)
	gone(t, m, `coinsApproved:{"page":1}`)
	gone(t, m, `userCoins:user-1:{"page":1}`)

	// Unrelated views survive.
	kept(t, m, `presale:{"page":1}`)
	kept(t, m, "promoted")
	kept(t, m, KeyTrending)
	kept(t, m, `userFavorites:user-1:{"page":1}`)
}

func TestInvalidateVote(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	seedStore(t, m)

	inv := NewInvalidator(m, DefaultTable())
	if err := inv.Invalidate(context.Background(), ScopeVote); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	gone(t, m, `coinsApproved:{"page":1}`)
	gone(t, m, `filtered:{"chain":"eth"}`)
	gone(t, m, "promoted")
	gone(t, m, KeyTrending)

	kept(t, m, `coinsPending:{"page":1}`)
	kept(t, m, `userFavorites:user-1:{"page":1}`)
}

func TestInvalidatePriceUpdateCoversAllListings(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	seedStore(t, m)

	inv := NewInvalidator(m, DefaultTable())
	if err := inv.Invalidate(context.Background(), ScopeUpdatePrice); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	gone(t, m, `coinsPending:{"page":1}`)
	gone(t, m, `coinsApproved:{"page":1}`)
	gone(t, m, `presale:{"page":1}`)
	gone(t, m, `fairlaunch:{"page":1}`)
	gone(t, m, `adminPromoted:{"page":1}`)
	gone(t, m, `filtered:{"chain":"eth"}`)
	gone(t, m, "promoted")
	gone(t, m, `userCoins:user-1:{"page":1}`)
}

func TestInvalidateFavoriteIsNarrow(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	seedStore(t, m)

	inv := NewInvalidator(m, DefaultTable())
	if err := inv.Invalidate(context.Background(), ScopeFavorite); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	gone(t, m, `userFavorites:user-1:{"page":1}`)
	kept(t, m, `coinsApproved:{"page":1}`)
	kept(t, m, "promoted")
}

func TestInvalidateDeleteCoversEverything(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	seedStore(t, m)

	inv := NewInvalidator(m, DefaultTable())
	if err := inv.Invalidate(context.Background(), ScopeDelete); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	if m.Len() != 0 {
		t.Errorf("Expected delete scope to purge every view, %d entries left", m.Len())
	}
}

func TestInvalidateUnknownScope(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	inv := NewInvalidator(m, DefaultTable())
	if err := inv.Invalidate(context.Background(), Scope("bogus")); err == nil {
		t.Error("Expected error for unknown scope")
	}
}

func TestDefaultTableCoversAllScopes(t *testing.T) {
	table := DefaultTable()
	scopes := []Scope{
		ScopePromotion, ScopeApproval, ScopeDecline, ScopeUpdate,
		ScopeUpdatePrice, ScopeVote, ScopeFavorite, ScopeDelete,
		ScopeCreate, ScopePresale, ScopeFairlaunch,
	}
	for _, s := range scopes {
		if len(table[s]) == 0 {
			t.Errorf("Scope %s has no invalidation targets", s)
		}
	}
}
