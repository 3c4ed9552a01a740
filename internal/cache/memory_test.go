// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryBasicOperations(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "coinsApproved:{}", []byte("page"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, found, err := m.Get(ctx, "coinsApproved:{}")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Error("Expected key to exist")
	}
	if string(value) != "page" {
		t.Errorf("Expected page, got %s", value)
	}

	_, found, _ = m.Get(ctx, "coinsPending:{}")
	if found {
		t.Error("Expected miss for absent key")
	}
}

func TestMemoryExpiration(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	_ = m.Set(ctx, "trending:all", []byte("ranked"), 50*time.Millisecond)

	_, found, _ := m.Get(ctx, "trending:all")
	if !found {
		t.Error("Expected key to exist immediately after set")
	}

	time.Sleep(80 * time.Millisecond)

	_, found, _ = m.Get(ctx, "trending:all")
	if found {
		t.Error("Expected key to be expired")
	}
}

func TestMemoryDeleteByPrefix(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	// Three parameter variants under one kind, one key under another,
	// and one key that shares the prefix text but not the separator.
	_ = m.Set(ctx, `coinsApproved:{"page":1}`, []byte("a"), time.Minute)
	_ = m.Set(ctx, `coinsApproved:{"page":2}`, []byte("b"), time.Minute)
	_ = m.Set(ctx, `coinsApproved:{"page":3}`, []byte("c"), time.Minute)
	_ = m.Set(ctx, `coinsPending:{"page":1}`, []byte("d"), time.Minute)
	_ = m.Set(ctx, "coinsApprovedExtra", []byte("e"), time.Minute)

	removed, err := m.DeleteByPrefix(ctx, "coinsApproved")
	if err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("Expected 3 removed, got %d", removed)
	}

	for page := 1; page <= 3; page++ {
		key := fmt.Sprintf(`coinsApproved:{"page":%d}`, page)
		if _, found, _ := m.Get(ctx, key); found {
			t.Errorf("Expected %s to be deleted", key)
		}
	}
	if _, found, _ := m.Get(ctx, `coinsPending:{"page":1}`); !found {
		t.Error("Expected other kind to survive prefix delete")
	}
	if _, found, _ := m.Get(ctx, "coinsApprovedExtra"); !found {
		t.Error("Prefix delete must only match prefix + separator")
	}
}

func TestMemoryDeletePipelined(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	_ = m.Set(ctx, "k1", []byte("1"), time.Minute)
	_ = m.Set(ctx, "k2", []byte("2"), time.Minute)

	// Absent keys are not an error.
	if err := m.DeletePipelined(ctx, []string{"k1", "k2", "k3"}); err != nil {
		t.Fatalf("DeletePipelined failed: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Expected empty store, got %d entries", m.Len())
	}
}

func TestFailOpenSwallowsErrors(t *testing.T) {
	fo := NewFailOpen(failingStore{})
	ctx := context.Background()

	// Read errors become misses.
	_, found, err := fo.Get(ctx, "any")
	if err != nil {
		t.Errorf("Expected read error to be swallowed, got %v", err)
	}
	if found {
		t.Error("Expected miss on store failure")
	}

	// Write and delete errors are swallowed.
	if err := fo.Set(ctx, "any", []byte("v"), time.Minute); err != nil {
		t.Errorf("Expected write error to be swallowed, got %v", err)
	}
	if err := fo.DeleteExact(ctx, "any"); err != nil {
		t.Errorf("Expected delete error to be swallowed, got %v", err)
	}
	if _, err := fo.DeleteByPrefix(ctx, "any"); err != nil {
		t.Errorf("Expected prefix delete error to be swallowed, got %v", err)
	}
	if err := fo.DeletePipelined(ctx, []string{"a", "b"}); err != nil {
		t.Errorf("Expected pipelined delete error to be swallowed, got %v", err)
	}
}

// failingStore errors on every operation.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, fmt.Errorf("store down")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return fmt.Errorf("store down")
}

func (failingStore) DeleteExact(context.Context, string) error {
	return fmt.Errorf("store down")
}

func (failingStore) DeleteByPrefix(context.Context, string) (int, error) {
	return 0, fmt.Errorf("store down")
}

func (failingStore) DeletePipelined(context.Context, []string) error {
	return fmt.Errorf("store down")
}
