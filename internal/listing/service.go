// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package listing

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/coindeck/coindeck/internal/cache"
	"github.com/coindeck/coindeck/internal/metrics"
	"github.com/coindeck/coindeck/internal/models"
	"github.com/coindeck/coindeck/internal/store"
)

// DefaultTTL bounds the staleness of listing pages. A mutation purges
// affected entries synchronously; this TTL is the backstop for the
// repopulation race and for cache outages during invalidation.
const DefaultTTL = 5 * time.Minute

// Service is the query result cache over the coin collection.
type Service struct {
	cache     cache.Store
	coins     store.CoinStore
	favorites store.FavoriteStore
	ttl       time.Duration
}

// NewService creates the listing service. The cache store is expected to
// already be wrapped fail-open.
func NewService(c cache.Store, coins store.CoinStore, favorites store.FavoriteStore) *Service {
	return &Service{cache: c, coins: coins, favorites: favorites, ttl: DefaultTTL}
}

// WithTTL overrides the page TTL. Zero or negative keeps the default.
func (s *Service) WithTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// Pending lists coins awaiting moderation.
func (s *Service) Pending(ctx context.Context, p Params) (*models.Page, bool, error) {
	return s.fetchCached(ctx, cache.KindCoinsPending, filterPending(), p)
}

// Approved lists live coins.
func (s *Service) Approved(ctx context.Context, p Params) (*models.Page, bool, error) {
	return s.fetchCached(ctx, cache.KindCoinsApproved, filterApproved(), p)
}

// AdminPromoted lists promoted coins for the admin view, regardless of
// moderation state.
func (s *Service) AdminPromoted(ctx context.Context, p Params) (*models.Page, bool, error) {
	return s.fetchCached(ctx, cache.KindAdminPromoted, filterAdminPromoted(), p)
}

// Presale lists approved coins currently in presale.
func (s *Service) Presale(ctx context.Context, p Params) (*models.Page, bool, error) {
	return s.fetchCached(ctx, cache.KindPresale, filterPresale(), p)
}

// Fairlaunch lists approved fair-launch coins.
func (s *Service) Fairlaunch(ctx context.Context, p Params) (*models.Page, bool, error) {
	return s.fetchCached(ctx, cache.KindFairlaunch, filterFairlaunch(), p)
}

// Filtered lists approved coins under arbitrary parameter filters.
func (s *Service) Filtered(ctx context.Context, p Params) (*models.Page, bool, error) {
	return s.fetchCached(ctx, cache.KindFiltered, filterApproved(), p)
}

// UserCoins lists the coins submitted by one user, any status.
func (s *Service) UserCoins(ctx context.Context, userID string, p Params) (*models.Page, bool, error) {
	p.Normalize()
	key := cache.UserKey(cache.KindUserCoins, userID, p)
	return s.fetchKeyed(ctx, cache.KindUserCoins, key, filterUserCoins(userID), p)
}

// UserFavorites lists the coins a user has favorited. The favorite set
// is resolved first, then paged through the coin collection like any
// other listing.
func (s *Service) UserFavorites(ctx context.Context, userID string, p Params) (*models.Page, bool, error) {
	p.Normalize()
	key := cache.UserKey(cache.KindUserFavorites, userID, p)

	if page, ok := s.lookup(ctx, cache.KindUserFavorites, key); ok {
		return page, true, nil
	}

	ids, err := s.favorites.CoinIDsForUser(ctx, userID, nil)
	if err != nil {
		return nil, false, fmt.Errorf("resolve favorite set: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	f := buildFilter(store.CoinFilter{IDs: ids}, p)

	page, err := s.runQuery(ctx, f, p)
	if err != nil {
		return nil, false, err
	}
	s.populate(ctx, key, page)
	return page, false, nil
}

// Promoted returns the globally-shared promoted list. It has no
// parameter variation: one exact key, fixed sort, no paging.
func (s *Service) Promoted(ctx context.Context) ([]models.Coin, bool, error) {
	if raw, found, _ := s.cache.Get(ctx, cache.KeyPromoted); found {
		var coins []models.Coin
		if err := json.Unmarshal(raw, &coins); err == nil {
			metrics.QueryCacheHits.WithLabelValues(cache.KeyPromoted).Inc()
			return coins, true, nil
		}
		// Undecodable entry: treat as miss, it will be overwritten below.
	}
	metrics.QueryCacheMisses.WithLabelValues(cache.KeyPromoted).Inc()

	coins, err := s.coins.FindPage(ctx, filterPromoted(),
		store.CoinSort{Field: store.SortByVotes, Desc: true}, 0, 0)
	if err != nil {
		return nil, false, fmt.Errorf("query promoted coins: %w", err)
	}
	coins = projectCoins(coins)

	if raw, err := json.Marshal(coins); err == nil {
		_ = s.cache.Set(ctx, cache.KeyPromoted, raw, s.ttl)
	}
	return coins, false, nil
}

// fetchCached serves a page from cache or runs the query and populates
// the entry. Params are normalized before the key is built so that
// equivalent parameter sets always share one cache entry.
func (s *Service) fetchCached(ctx context.Context, kind string, base store.CoinFilter, p Params) (*models.Page, bool, error) {
	p.Normalize()
	return s.fetchKeyed(ctx, kind, cache.Key(kind, p), base, p)
}

// fetchKeyed is fetchCached after key construction. Callers must pass
// normalized params.
func (s *Service) fetchKeyed(ctx context.Context, kind, key string, base store.CoinFilter, p Params) (*models.Page, bool, error) {
	if page, ok := s.lookup(ctx, kind, key); ok {
		return page, true, nil
	}

	page, err := s.runQuery(ctx, buildFilter(base, p), p)
	if err != nil {
		return nil, false, err
	}
	s.populate(ctx, key, page)
	return page, false, nil
}

// lookup consults the cache; store errors surface as misses through the
// fail-open wrapper.
func (s *Service) lookup(ctx context.Context, kind, key string) (*models.Page, bool) {
	raw, found, _ := s.cache.Get(ctx, key)
	if !found {
		metrics.QueryCacheMisses.WithLabelValues(kind).Inc()
		return nil, false
	}
	var page models.Page
	if err := json.Unmarshal(raw, &page); err != nil {
		metrics.QueryCacheMisses.WithLabelValues(kind).Inc()
		return nil, false
	}
	metrics.QueryCacheHits.WithLabelValues(kind).Inc()
	return &page, true
}

// runQuery executes filter -> count -> sort -> skip -> limit -> project.
func (s *Service) runQuery(ctx context.Context, f store.CoinFilter, p Params) (*models.Page, error) {
	total, err := s.coins.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("count coins: %w", err)
	}

	skip := (p.Page - 1) * p.PageSize
	coins, err := s.coins.FindPage(ctx, f, sortOf(p), skip, p.PageSize)
	if err != nil {
		return nil, fmt.Errorf("query coin page: %w", err)
	}

	return &models.Page{
		Items:    projectCoins(coins),
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
	}, nil
}

func (s *Service) populate(ctx context.Context, key string, page *models.Page) {
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, raw, s.ttl)
}
