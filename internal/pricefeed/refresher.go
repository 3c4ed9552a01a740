// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package pricefeed

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/coindeck/coindeck/internal/cache"
	"github.com/coindeck/coindeck/internal/logging"
	"github.com/coindeck/coindeck/internal/store"
)

// Refresher updates market data for every approved coin in one pass,
// with bounded concurrency and a shared rate limit toward the upstream.
type Refresher struct {
	provider    Provider
	coins       store.CoinStore
	invalidator *cache.Invalidator
	limiter     *rate.Limiter
	workers     int
}

// NewRefresher creates a refresher. rps bounds outbound request rate;
// workers bounds concurrent fetches.
func NewRefresher(provider Provider, coins store.CoinStore, inv *cache.Invalidator, rps float64, workers int) *Refresher {
	if rps <= 0 {
		rps = 5
	}
	if workers <= 0 {
		workers = 4
	}
	return &Refresher{
		provider:    provider,
		coins:       coins,
		invalidator: inv,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		workers:     workers,
	}
}

// RefreshAll fetches quotes for all approved coins and persists the
// ones that returned data. A coin whose fetch fails keeps its previous
// values. One invalidation covers the whole batch; per-coin purging
// multiplies deletions without tightening staleness.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	coins, err := r.coins.ListApproved(ctx)
	if err != nil {
		return err
	}
	if len(coins) == 0 {
		return nil
	}

	start := time.Now()
	var updated, failed int64
	var mu sync.Mutex

	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup
	for _, c := range coins {
		if ctx.Err() != nil {
			break
		}
		if err := r.limiter.Wait(ctx); err != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(id, chain, address string) {
			defer wg.Done()
			defer func() { <-sem }()

			data, err := r.provider.Quote(ctx, chain, address)
			if err != nil {
				logging.Debug().Err(err).Str("coin_id", id).Msg("Price fetch failed")
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			if data.Price == 0 && data.Liquidity == 0 {
				// Upstream had nothing for this token; keep what we have.
				return
			}
			if err := r.coins.UpdatePrice(ctx, id, data); err != nil {
				logging.Error().Err(err).Str("coin_id", id).Msg("Price persist failed")
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			mu.Lock()
			updated++
			mu.Unlock()
		}(c.ID, c.Chain, c.Address)
	}
	wg.Wait()

	if updated > 0 {
		if err := r.invalidator.Invalidate(ctx, cache.ScopeUpdatePrice); err != nil {
			logging.Error().Err(err).Msg("Price invalidation failed")
		}
	}
	logging.Info().
		Int("coins", len(coins)).
		Int64("updated", updated).
		Int64("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Price refresh pass complete")
	return ctx.Err()
}
