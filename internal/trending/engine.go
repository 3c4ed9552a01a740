// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package trending ranks approved coins by a composite engagement
// score and caches the full ranked set so every limit is a slice of
// the same snapshot.
package trending

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/coindeck/coindeck/internal/cache"
	"github.com/coindeck/coindeck/internal/logging"
	"github.com/coindeck/coindeck/internal/metrics"
	"github.com/coindeck/coindeck/internal/models"
	"github.com/coindeck/coindeck/internal/store"
)

// Score weights and activation thresholds. Views always count; the
// vote and price terms only activate past their thresholds so thin
// signals cannot dominate the ranking.
const (
	viewWeight  = 0.5
	voteWeight  = 0.3
	priceWeight = 0.2

	voteThreshold      = 100
	liquidityThreshold = 10000
	priceGainThreshold = 10
)

// DefaultTTL is how long a ranked snapshot is served before rebuild.
const DefaultTTL = 10 * time.Minute

// Engine computes and caches the trending ranking.
type Engine struct {
	cache cache.Store
	coins store.CoinStore
	views store.ViewStore
	ttl   time.Duration
	now   func() time.Time
}

// New creates a trending engine with the default TTL.
func New(c cache.Store, coins store.CoinStore, views store.ViewStore) *Engine {
	return &Engine{
		cache: c,
		coins: coins,
		views: views,
		ttl:   DefaultTTL,
		now:   time.Now,
	}
}

// WithTTL overrides the snapshot TTL. Zero or negative keeps the
// default.
func (e *Engine) WithTTL(ttl time.Duration) *Engine {
	if ttl > 0 {
		e.ttl = ttl
	}
	return e
}

// WithClock replaces the time source. Test helper.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Top returns up to limit coins ranked by score. The full ranked set
// is cached under a single fixed key and sliced after the read, so
// requests with different limits share one snapshot and one rebuild.
func (e *Engine) Top(ctx context.Context, limit int) ([]models.Coin, bool, error) {
	if limit <= 0 {
		return []models.Coin{}, false, nil
	}

	raw, hit, err := e.cache.Get(ctx, cache.KeyTrending)
	if err == nil && hit {
		var ranked []models.Coin
		if err := json.Unmarshal(raw, &ranked); err == nil {
			metrics.QueryCacheHits.WithLabelValues(cache.KindTrending).Inc()
			return clip(ranked, limit), true, nil
		}
		logging.Warn().Err(err).Msg("Discarding undecodable trending snapshot")
	}
	metrics.QueryCacheMisses.WithLabelValues(cache.KindTrending).Inc()

	ranked, err := e.rebuild(ctx)
	if err != nil {
		return nil, false, err
	}

	if raw, err := json.Marshal(ranked); err == nil {
		if err := e.cache.Set(ctx, cache.KeyTrending, raw, e.ttl); err != nil {
			logging.Warn().Err(err).Msg("Failed to cache trending snapshot")
		}
	}
	return clip(ranked, limit), false, nil
}

// rebuild scores every approved coin and sorts descending. Ties keep
// the store's ID ordering so consecutive rebuilds agree.
func (e *Engine) rebuild(ctx context.Context) ([]models.Coin, error) {
	start := e.now()

	coins, err := e.coins.ListApproved(ctx)
	if err != nil {
		return nil, fmt.Errorf("list approved coins: %w", err)
	}

	viewCounts, err := e.views.DistinctViewCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count coin views: %w", err)
	}

	scores := make(map[string]float64, len(coins))
	for _, c := range coins {
		scores[c.ID] = Score(c, viewCounts[c.ID])
	}
	// Ties break by ID ascending, which matches the input order:
	// ListApproved returns coins ID-ascending, so equal scores keep
	// their prior relative order.
	sort.SliceStable(coins, func(i, j int) bool {
		si, sj := scores[coins[i].ID], scores[coins[j].ID]
		if si != sj {
			return si > sj
		}
		return coins[i].ID < coins[j].ID
	})

	metrics.TrendingRebuildDuration.Observe(time.Since(start).Seconds())
	logging.Debug().
		Int("coins", len(coins)).
		Dur("elapsed", time.Since(start)).
		Msg("Rebuilt trending ranking")
	return coins, nil
}

// Score computes the composite engagement score for one coin.
func Score(c models.Coin, distinctViews int64) float64 {
	s := viewWeight * float64(distinctViews)
	if c.TodayVotes > voteThreshold {
		s += voteWeight * float64(c.TodayVotes)
	}
	if c.Liquidity >= liquidityThreshold && c.Price24h > priceGainThreshold {
		s += priceWeight * c.Price24h
	}
	return s
}

func clip(coins []models.Coin, limit int) []models.Coin {
	if limit < len(coins) {
		return coins[:limit]
	}
	return coins
}
