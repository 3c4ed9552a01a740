// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/coindeck/coindeck/internal/models"
)

// MemCoinStore is an in-memory CoinStore used by tests and dev mode.
// FindPage/Count reproduce the external collection's filter -> count ->
// sort -> skip -> limit contract, including the ID-ascending tie-break.
type MemCoinStore struct {
	mu    sync.RWMutex
	coins map[string]models.Coin
}

// NewMemCoinStore creates an empty in-memory coin store.
func NewMemCoinStore() *MemCoinStore {
	return &MemCoinStore{coins: make(map[string]models.Coin)}
}

func (s *MemCoinStore) Insert(_ context.Context, c models.Coin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coins[c.ID] = c
	return nil
}

func (s *MemCoinStore) FindByID(_ context.Context, id string) (*models.Coin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.coins[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemCoinStore) FindPage(_ context.Context, f CoinFilter, srt CoinSort, skip, limit int) ([]models.Coin, error) {
	s.mu.RLock()
	matched := s.matchLocked(f)
	s.mu.RUnlock()

	sortCoins(matched, srt)

	if skip >= len(matched) {
		return []models.Coin{}, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *MemCoinStore) Count(_ context.Context, f CoinFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.matchLocked(f))), nil
}

func (s *MemCoinStore) IncrementVotes(_ context.Context, id string, votes, todayVotes int64) (*models.Coin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coins[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Votes += votes
	c.TodayVotes += todayVotes
	s.coins[id] = c
	return &c, nil
}

func (s *MemCoinStore) UpdateStatus(_ context.Context, id string, status models.CoinStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coins[id]
	if !ok {
		return ErrNotFound
	}
	c.Status = status
	s.coins[id] = c
	return nil
}

func (s *MemCoinStore) SetPromoted(_ context.Context, id string, promoted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coins[id]
	if !ok {
		return ErrNotFound
	}
	c.Promoted = promoted
	s.coins[id] = c
	return nil
}

func (s *MemCoinStore) UpdatePrice(_ context.Context, id string, pd models.PriceData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coins[id]
	if !ok {
		return ErrNotFound
	}
	c.Price = pd.Price
	c.Price24h = pd.Price24h
	c.Mkap = pd.Mkap
	c.Liquidity = pd.Liquidity
	s.coins[id] = c
	return nil
}

func (s *MemCoinStore) Update(_ context.Context, c models.Coin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.coins[c.ID]; !ok {
		return ErrNotFound
	}
	s.coins[c.ID] = c
	return nil
}

func (s *MemCoinStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.coins[id]; !ok {
		return ErrNotFound
	}
	delete(s.coins, id)
	return nil
}

func (s *MemCoinStore) ResetTodayVotes(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.coins {
		c.TodayVotes = 0
		s.coins[id] = c
	}
	return nil
}

func (s *MemCoinStore) ListApproved(_ context.Context) ([]models.Coin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	approved := models.StatusApproved
	out := s.matchLocked(CoinFilter{Status: &approved})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// matchLocked applies the filter; caller holds at least a read lock.
func (s *MemCoinStore) matchLocked(f CoinFilter) []models.Coin {
	var idSet map[string]struct{}
	if f.IDs != nil {
		idSet = make(map[string]struct{}, len(f.IDs))
		for _, id := range f.IDs {
			idSet[id] = struct{}{}
		}
	}

	out := make([]models.Coin, 0, len(s.coins))
	for _, c := range s.coins {
		if idSet != nil {
			if _, ok := idSet[c.ID]; !ok {
				continue
			}
		}
		if !matchCoin(c, f) {
			continue
		}
		out = append(out, c)
	}
	return out
}

//nolint:gocyclo // one predicate per filter dimension
func matchCoin(c models.Coin, f CoinFilter) bool {
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if f.Promoted != nil && c.Promoted != *f.Promoted {
		return false
	}
	if len(f.Chains) > 0 && !containsFold(f.Chains, c.Chain) {
		return false
	}
	if f.InPresale != nil && c.Presale.Active != *f.InPresale {
		return false
	}
	if f.InFairlaunch != nil && c.Fairlaunch.Active != *f.InFairlaunch {
		return false
	}
	if f.Audited != nil && c.Audit.Audited != *f.Audited {
		return false
	}
	if f.KYCVerified != nil && c.KYC.Verified != *f.KYCVerified {
		return false
	}
	if f.OwnerID != nil && c.OwnerID != *f.OwnerID {
		return false
	}
	if f.HasLaunchDate != nil {
		if *f.HasLaunchDate == (c.LaunchDate == nil) {
			return false
		}
	}
	if f.NonZeroPrice24h && c.Price24h == 0 {
		return false
	}
	if f.NonZeroLiquidity && c.Liquidity == 0 {
		return false
	}
	if f.Search != nil && !matchSearch(c, *f.Search) {
		return false
	}
	return true
}

func matchSearch(c models.Coin, spec SearchSpec) bool {
	term := strings.ToLower(spec.Text)
	if strings.Contains(strings.ToLower(c.Name), term) {
		return true
	}
	if strings.Contains(strings.ToLower(c.Symbol), term) {
		return true
	}
	if spec.MatchAddress && strings.EqualFold(c.Address, spec.Text) {
		return true
	}
	return false
}

func containsFold(values []string, v string) bool {
	for _, s := range values {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// sortCoins sorts by the primary column with an ID-ascending tie-break.
// Stable sort keeps equal keys deterministic across identical inputs.
func sortCoins(coins []models.Coin, srt CoinSort) {
	less := coinLess(srt.Field)
	sort.SliceStable(coins, func(i, j int) bool {
		a, b := coins[i], coins[j]
		if srt.Desc {
			a, b = b, a
		}
		switch {
		case less(a, b):
			return true
		case less(b, a):
			return false
		default:
			// Tie-break is always ID ascending regardless of direction.
			return coins[i].ID < coins[j].ID
		}
	})
}

func coinLess(field SortField) func(a, b models.Coin) bool {
	switch field {
	case SortByVotes:
		return func(a, b models.Coin) bool { return a.Votes < b.Votes }
	case SortByTodayVotes:
		return func(a, b models.Coin) bool { return a.TodayVotes < b.TodayVotes }
	case SortByPrice:
		return func(a, b models.Coin) bool { return a.Price < b.Price }
	case SortByPrice24h:
		return func(a, b models.Coin) bool { return a.Price24h < b.Price24h }
	case SortByMkap:
		return func(a, b models.Coin) bool { return a.Mkap < b.Mkap }
	case SortByLiquidity:
		return func(a, b models.Coin) bool { return a.Liquidity < b.Liquidity }
	case SortByDaysSinceLaunch:
		// Fewer days since launch sorts first ascending; callers exclude
		// nil launch dates via the HasLaunchDate filter rule.
		return func(a, b models.Coin) bool {
			at, bt := launchOrZero(a), launchOrZero(b)
			return at.After(bt)
		}
	case SortByName:
		return func(a, b models.Coin) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case SortByCreatedAt:
		return func(a, b models.Coin) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return func(a, b models.Coin) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

func launchOrZero(c models.Coin) time.Time {
	if c.LaunchDate == nil {
		return time.Time{}
	}
	return *c.LaunchDate
}
