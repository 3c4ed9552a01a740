// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package catalog owns the coin lifecycle: submission, moderation,
// updates, deletion, and view tracking. Every mutation declares its
// invalidation scope so the cached listings a change can affect are
// purged before the response is returned.
package catalog

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

// ErrCoinNotFound is returned by operations targeting a missing coin.
var ErrCoinNotFound = errors.New("coin not found")

// ErrInvalid reports a submission missing required fields.
var ErrInvalid = errors.New("invalid coin submission")

// ViewDedupWindow is how long a (coin, ip) pair counts as one view.
const ViewDedupWindow = 24 * time.Hour

// Service implements the coin lifecycle over the store boundary.
type Service struct {
	coins       store.CoinStore
	votes       store.VoteStore
	favorites   store.FavoriteStore
	views       store.ViewStore
	invalidator *cache.Invalidator
	now         func() time.Time
}

// New creates the catalog service.
func New(coins store.CoinStore, votes store.VoteStore, favorites store.FavoriteStore, views store.ViewStore, inv *cache.Invalidator) *Service {
	return &Service{
		coins:       coins,
		votes:       votes,
		favorites:   favorites,
		views:       views,
		invalidator: inv,
		now:         time.Now,
	}
}

// Submit registers a new coin in pending state, owned by the
// submitting user. It enters the public listings only after approval.
func (s *Service) Submit(ctx context.Context, c models.Coin, ownerID string) (*models.Coin, error) {
	if c.Name == "" || c.Symbol == "" || c.Chain == "" {
		return nil, fmt.Errorf("%w: name, symbol and chain are required", ErrInvalid)
	}
	c.ID = uuid.NewString()
	c.OwnerID = ownerID
	c.Status = models.StatusPending
	c.Promoted = false
	c.Votes = 0
	c.TodayVotes = 0
	c.CreatedAt = s.now()

	if err := s.coins.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("insert coin: %w", err)
	}
	s.invalidate(ctx, cache.ScopeCreate)
	logging.Info().Str("coin_id", c.ID).Str("symbol", c.Symbol).Msg("Coin submitted")
	return &c, nil
}

// Approve moves a pending coin into the public listings.
func (s *Service) Approve(ctx context.Context, coinID string) error {
	if err := s.setStatus(ctx, coinID, models.StatusApproved); err != nil {
		return err
	}
	s.invalidate(ctx, cache.ScopeApproval)
	logging.Info().Str("coin_id", coinID).Msg("Coin approved")
	return nil
}

// Decline rejects a pending coin. The record is kept so the owner can
// still see the outcome in their own listing.
func (s *Service) Decline(ctx context.Context, coinID string) error {
	if err := s.setStatus(ctx, coinID, models.StatusDenied); err != nil {
		return err
	}
	s.invalidate(ctx, cache.ScopeDecline)
	logging.Info().Str("coin_id", coinID).Msg("Coin declined")
	return nil
}

// Promote sets or clears the promoted flag.
func (s *Service) Promote(ctx context.Context, coinID string, promoted bool) error {
	if err := s.coins.SetPromoted(ctx, coinID, promoted); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCoinNotFound
		}
		return fmt.Errorf("set promoted: %w", err)
	}
	s.invalidate(ctx, cache.ScopePromotion)
	logging.Info().Str("coin_id", coinID).Bool("promoted", promoted).Msg("Coin promotion changed")
	return nil
}

// Update replaces a coin's editable fields. Status, promotion and vote
// counters are owned by their dedicated operations and preserved.
func (s *Service) Update(ctx context.Context, updated models.Coin) (*models.Coin, error) {
	current, err := s.coins.FindByID(ctx, updated.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCoinNotFound
		}
		return nil, fmt.Errorf("look up coin: %w", err)
	}

	updated.Status = current.Status
	updated.Promoted = current.Promoted
	updated.Votes = current.Votes
	updated.TodayVotes = current.TodayVotes
	updated.OwnerID = current.OwnerID
	updated.CreatedAt = current.CreatedAt

	if err := s.coins.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("update coin: %w", err)
	}
	s.invalidate(ctx, cache.ScopeUpdate)
	logging.Info().Str("coin_id", updated.ID).Msg("Coin updated")
	return &updated, nil
}

// SetPresale updates only the presale section, purging the narrower
// presale scope instead of every listing.
func (s *Service) SetPresale(ctx context.Context, coinID string, p models.Presale) error {
	if err := s.patch(ctx, coinID, func(c *models.Coin) { c.Presale = p }); err != nil {
		return err
	}
	s.invalidate(ctx, cache.ScopePresale)
	return nil
}

// SetFairlaunch updates only the fairlaunch section.
func (s *Service) SetFairlaunch(ctx context.Context, coinID string, f models.Fairlaunch) error {
	if err := s.patch(ctx, coinID, func(c *models.Coin) { c.Fairlaunch = f }); err != nil {
		return err
	}
	s.invalidate(ctx, cache.ScopeFairlaunch)
	return nil
}

// Delete removes the coin and cascades to its votes, favorites and
// view records, then purges every cached view that could contain it.
func (s *Service) Delete(ctx context.Context, coinID string) error {
	if err := s.coins.Delete(ctx, coinID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCoinNotFound
		}
		return fmt.Errorf("delete coin: %w", err)
	}
	if err := s.votes.DeleteByCoin(ctx, coinID); err != nil {
		logging.Error().Err(err).Str("coin_id", coinID).Msg("Vote cascade failed")
	}
	if err := s.favorites.DeleteByCoin(ctx, coinID); err != nil {
		logging.Error().Err(err).Str("coin_id", coinID).Msg("Favorite cascade failed")
	}
	if err := s.views.DeleteByCoin(ctx, coinID); err != nil {
		logging.Error().Err(err).Str("coin_id", coinID).Msg("View cascade failed")
	}
	s.invalidate(ctx, cache.ScopeDelete)
	logging.Info().Str("coin_id", coinID).Msg("Coin deleted")
	return nil
}

// Get fetches a single coin by ID.
func (s *Service) Get(ctx context.Context, coinID string) (*models.Coin, error) {
	c, err := s.coins.FindByID(ctx, coinID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCoinNotFound
		}
		return nil, err
	}
	return c, nil
}

// RecordView stores a deduplicated coin view. The same (coin, ip) pair
// counts once per dedup window; the bool reports whether this view was
// counted. Views feed the trending score on its own rebuild cadence,
// so no cache scope is purged here.
func (s *Service) RecordView(ctx context.Context, coinID, ip, userAgent string) (bool, error) {
	if _, err := s.coins.FindByID(ctx, coinID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrCoinNotFound
		}
		return false, fmt.Errorf("look up coin: %w", err)
	}
	counted, err := s.views.Record(ctx, models.CoinView{
		ID:        uuid.NewString(),
		CoinID:    coinID,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: s.now(),
	}, ViewDedupWindow)
	if err != nil {
		return false, fmt.Errorf("record view: %w", err)
	}
	return counted, nil
}

func (s *Service) setStatus(ctx context.Context, coinID string, status models.CoinStatus) error {
	if err := s.coins.UpdateStatus(ctx, coinID, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCoinNotFound
		}
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

func (s *Service) patch(ctx context.Context, coinID string, apply func(*models.Coin)) error {
	c, err := s.coins.FindByID(ctx, coinID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCoinNotFound
		}
		return fmt.Errorf("look up coin: %w", err)
	}
	apply(c)
	if err := s.coins.Update(ctx, *c); err != nil {
		return fmt.Errorf("update coin: %w", err)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, scope cache.Scope) {
	if err := s.invalidator.Invalidate(ctx, scope); err != nil {
		logging.Error().Err(err).Str("scope", string(scope)).Msg("Invalidation failed")
	}
}

// WithClock replaces the time source. Test helper.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
