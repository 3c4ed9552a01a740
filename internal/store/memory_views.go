// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package store

import (
	"context"
	"sync"
	"time"

	"github.com/coindeck/coindeck/internal/models"
)

// MemViewStore is an in-memory ViewStore used by tests and dev mode.
// Records are kept for the retention window; Record enforces the
// one-view-per-(coin, ip)-per-window dedup at write time.
type MemViewStore struct {
	mu        sync.RWMutex
	views     []models.CoinView
	retention time.Duration
}

// NewMemViewStore creates an in-memory view store with the given
// retention window (30 days in production wiring).
func NewMemViewStore(retention time.Duration) *MemViewStore {
	return &MemViewStore{retention: retention}
}

func (s *MemViewStore) Record(_ context.Context, v models.CoinView, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked(v.CreatedAt)

	cutoff := v.CreatedAt.Add(-window)
	for _, existing := range s.views {
		if existing.CoinID == v.CoinID && existing.IPAddress == v.IPAddress && existing.CreatedAt.After(cutoff) {
			return false, nil
		}
	}
	s.views = append(s.views, v)
	return true, nil
}

func (s *MemViewStore) DistinctViewCounts(_ context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Distinct (coin, ip) pairs: one view per IP per coin counts once.
	seen := make(map[string]struct{}, len(s.views))
	counts := make(map[string]int64)
	for _, v := range s.views {
		key := v.CoinID + "\x00" + v.IPAddress
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		counts[v.CoinID]++
	}
	return counts, nil
}

func (s *MemViewStore) DeleteByCoin(_ context.Context, coinID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.views[:0]
	for _, v := range s.views {
		if v.CoinID != coinID {
			kept = append(kept, v)
		}
	}
	s.views = kept
	return nil
}

// expireLocked drops records older than the retention window.
func (s *MemViewStore) expireLocked(now time.Time) {
	if s.retention <= 0 {
		return
	}
	cutoff := now.Add(-s.retention)
	kept := s.views[:0]
	for _, v := range s.views {
		if v.CreatedAt.After(cutoff) {
			kept = append(kept, v)
		}
	}
	s.views = kept
}
