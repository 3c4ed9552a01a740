// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package store

import (
	"context"
	"sync"

	"github.com/coindeck/coindeck/internal/models"
)

// MemFavoriteStore is an in-memory FavoriteStore used by tests and dev
// mode. It keeps at most one record per (user, coin) pair, but the
// favorites service does not rely on that; the toggle's read-before-write
// logic is the only enforced invariant, matching the external store.
type MemFavoriteStore struct {
	mu  sync.RWMutex
	fav map[string]models.Favorite // key: userID + "\x00" + coinID
}

// NewMemFavoriteStore creates an empty in-memory favorite store.
func NewMemFavoriteStore() *MemFavoriteStore {
	return &MemFavoriteStore{fav: make(map[string]models.Favorite)}
}

func favKey(userID, coinID string) string {
	return userID + "\x00" + coinID
}

func (s *MemFavoriteStore) Find(_ context.Context, userID, coinID string) (*models.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fav[favKey(userID, coinID)]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (s *MemFavoriteStore) Insert(_ context.Context, f models.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fav[favKey(f.UserID, f.CoinID)] = f
	return nil
}

func (s *MemFavoriteStore) Delete(_ context.Context, userID, coinID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := favKey(userID, coinID)
	if _, ok := s.fav[key]; !ok {
		return ErrNotFound
	}
	delete(s.fav, key)
	return nil
}

func (s *MemFavoriteStore) CoinIDsForUser(_ context.Context, userID string, coinIDs []string) ([]string, error) {
	var want map[string]struct{}
	if coinIDs != nil {
		want = make(map[string]struct{}, len(coinIDs))
		for _, id := range coinIDs {
			want[id] = struct{}{}
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for _, f := range s.fav {
		if f.UserID != userID {
			continue
		}
		if want != nil {
			if _, ok := want[f.CoinID]; !ok {
				continue
			}
		}
		out = append(out, f.CoinID)
	}
	return out, nil
}

func (s *MemFavoriteStore) DeleteByCoin(_ context.Context, coinID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, f := range s.fav {
		if f.CoinID == coinID {
			delete(s.fav, key)
		}
	}
	return nil
}
