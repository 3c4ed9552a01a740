// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package favorites implements per-user favorite toggling.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coindeck/coindeck/internal/cache"
	"github.com/coindeck/coindeck/internal/logging"
	"github.com/coindeck/coindeck/internal/models"
	"github.com/coindeck/coindeck/internal/store"
)

// ErrCoinNotFound is returned when toggling against a coin ID that
// does not exist.
var ErrCoinNotFound = errors.New("coin not found")

// ErrInvalid reports a toggle with a missing user or coin ID.
var ErrInvalid = errors.New("invalid favorite request")

// Service toggles favorites and keeps the per-user favorites cache
// coherent.
type Service struct {
	coins       store.CoinStore
	favorites   store.FavoriteStore
	invalidator *cache.Invalidator
	now         func() time.Time
}

// New creates the favorites service.
func New(coins store.CoinStore, favorites store.FavoriteStore, inv *cache.Invalidator) *Service {
	return &Service{coins: coins, favorites: favorites, invalidator: inv, now: time.Now}
}

// Toggle flips the favorite state for (userID, coinID) and reports the
// resulting state: true when the coin is now favorited.
//
// The find-then-write pair is not atomic. Two concurrent toggles from
// the same user can both observe "absent" and both insert; the store
// keeps one row per (user, coin) key so the second insert lands on the
// same row. A user racing themselves ends up favorited either way.
func (s *Service) Toggle(ctx context.Context, userID, coinID string) (bool, error) {
	if userID == "" || coinID == "" {
		return false, fmt.Errorf("%w: user ID and coin ID are required", ErrInvalid)
	}
	if _, err := s.coins.FindByID(ctx, coinID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrCoinNotFound
		}
		return false, fmt.Errorf("look up coin: %w", err)
	}

	existing, err := s.favorites.Find(ctx, userID, coinID)
	switch {
	case err == nil && existing != nil:
		if err := s.favorites.Delete(ctx, userID, coinID); err != nil {
			return false, fmt.Errorf("remove favorite: %w", err)
		}
		s.invalidate(ctx, userID, coinID, false)
		return false, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return false, fmt.Errorf("look up favorite: %w", err)
	}

	fav := models.Favorite{
		ID:        uuid.NewString(),
		UserID:    userID,
		CoinID:    coinID,
		CreatedAt: s.now(),
	}
	if err := s.favorites.Insert(ctx, fav); err != nil {
		return false, fmt.Errorf("insert favorite: %w", err)
	}
	s.invalidate(ctx, userID, coinID, true)
	return true, nil
}

func (s *Service) invalidate(ctx context.Context, userID, coinID string, favorited bool) {
	if err := s.invalidator.Invalidate(ctx, cache.ScopeFavorite); err != nil {
		logging.Error().Err(err).Msg("Favorite invalidation failed")
	}
	logging.Debug().
		Str("user_id", userID).
		Str("coin_id", coinID).
		Bool("favorited", favorited).
		Msg("Favorite toggled")
}
