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

// MemVoteStore is an in-memory VoteStore used by tests and dev mode.
type MemVoteStore struct {
	mu    sync.RWMutex
	votes []models.Vote
}

// NewMemVoteStore creates an empty in-memory vote store.
func NewMemVoteStore() *MemVoteStore {
	return &MemVoteStore{}
}

func (s *MemVoteStore) Insert(_ context.Context, v models.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = append(s.votes, v)
	return nil
}

func (s *MemVoteStore) ExistsSince(_ context.Context, coinID, ip string, since time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.votes {
		if v.CoinID == coinID && v.IPAddress == ip && !v.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemVoteStore) CoinIDsVotedSince(_ context.Context, ip string, coinIDs []string, since time.Time) ([]string, error) {
	want := make(map[string]struct{}, len(coinIDs))
	for _, id := range coinIDs {
		want[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, v := range s.votes {
		if v.IPAddress != ip || v.CreatedAt.Before(since) {
			continue
		}
		if _, ok := want[v.CoinID]; !ok {
			continue
		}
		if _, dup := seen[v.CoinID]; dup {
			continue
		}
		seen[v.CoinID] = struct{}{}
		out = append(out, v.CoinID)
	}
	return out, nil
}

func (s *MemVoteStore) DeleteByCoin(_ context.Context, coinID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.votes[:0]
	for _, v := range s.votes {
		if v.CoinID != coinID {
			kept = append(kept, v)
		}
	}
	s.votes = kept
	return nil
}

// CountByCoin reports the number of stored votes for a coin. Test helper.
func (s *MemVoteStore) CountByCoin(coinID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, v := range s.votes {
		if v.CoinID == coinID {
			n++
		}
	}
	return n
}
