// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package scheduler holds the background jobs run under the supervisor
// tree: the daily vote-counter reset and the periodic price refresh.
// Each job is a suture.Service; a panic or returned error restarts the
// job without touching the rest of the tree.
package scheduler

import (
	"context"
	"time"

	"github.com/coindeck/coindeck/internal/cache"
	"github.com/coindeck/coindeck/internal/logging"
	"github.com/coindeck/coindeck/internal/metrics"
	"github.com/coindeck/coindeck/internal/store"
)

// DailyResetService zeroes every coin's todayVotes counter at UTC
// midnight. The reset is what scopes the vote invariant to a calendar
// day on the read side as well: without it, todayVotes would drift
// from the ledger's per-day accounting.
type DailyResetService struct {
	coins       store.CoinStore
	invalidator *cache.Invalidator
	now         func() time.Time
}

// NewDailyReset creates the daily reset job.
func NewDailyReset(coins store.CoinStore, inv *cache.Invalidator) *DailyResetService {
	return &DailyResetService{coins: coins, invalidator: inv, now: time.Now}
}

// Serve implements suture.Service. It sleeps until the next UTC
// midnight, runs the reset, and repeats until the context is canceled.
func (s *DailyResetService) Serve(ctx context.Context) error {
	for {
		wait := nextUTCMidnight(s.now()).Sub(s.now())
		logging.Debug().Dur("wait", wait).Msg("Daily vote reset scheduled")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		s.runOnce(ctx)
	}
}

func (s *DailyResetService) runOnce(ctx context.Context) {
	if err := s.coins.ResetTodayVotes(ctx); err != nil {
		metrics.ScheduledJobRuns.WithLabelValues("daily_vote_reset", "error").Inc()
		logging.Error().Err(err).Msg("Daily vote reset failed")
		return
	}
	// todayVotes feeds sort orders and the trending score, so the
	// reset purges the same caches a vote does.
	if err := s.invalidator.Invalidate(ctx, cache.ScopeVote); err != nil {
		logging.Error().Err(err).Msg("Daily reset invalidation failed")
	}
	metrics.ScheduledJobRuns.WithLabelValues("daily_vote_reset", "ok").Inc()
	logging.Info().Msg("Daily vote counters reset")
}

// nextUTCMidnight returns the first instant of the next UTC day.
func nextUTCMidnight(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}

// Refreshable runs one refresh pass. Implemented by pricefeed.Refresher.
type Refreshable interface {
	RefreshAll(ctx context.Context) error
}

// PriceRefreshService runs the price refresher on a fixed interval.
type PriceRefreshService struct {
	refresher Refreshable
	interval  time.Duration
}

// NewPriceRefresh creates the periodic price refresh job.
func NewPriceRefresh(r Refreshable, interval time.Duration) *PriceRefreshService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &PriceRefreshService{refresher: r, interval: interval}
}

// Serve implements suture.Service. The first pass runs immediately so
// a fresh deployment does not serve day-old prices for a full interval.
func (s *PriceRefreshService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *PriceRefreshService) runOnce(ctx context.Context) {
	if err := s.refresher.RefreshAll(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		metrics.ScheduledJobRuns.WithLabelValues("price_refresh", "error").Inc()
		logging.Error().Err(err).Msg("Price refresh pass failed")
		return
	}
	metrics.ScheduledJobRuns.WithLabelValues("price_refresh", "ok").Inc()
}
