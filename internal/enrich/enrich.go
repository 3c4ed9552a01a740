// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package enrich computes the per-viewer flags (userVoted, isFavorited)
// on top of a cached coin page. It always queries the vote and favorite
// stores directly, bypassing the query result cache, so a vote or
// favorite toggle is reflected in the very next request even while the
// page's static fields are still served stale within their TTL.
package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/coindeck/coindeck/internal/models"
	"github.com/coindeck/coindeck/internal/store"
	"github.com/coindeck/coindeck/internal/voting"
)

// Pipeline attaches viewer flags to coin pages. Its output is never
// cached: it is viewer-specific, the underlying page is viewer-agnostic.
type Pipeline struct {
	votes     store.VoteStore
	favorites store.FavoriteStore
	now       func() time.Time
}

// New creates the enrichment pipeline.
func New(votes store.VoteStore, favorites store.FavoriteStore) *Pipeline {
	return &Pipeline{votes: votes, favorites: favorites, now: time.Now}
}

// Enrich resolves the viewer's favorite set (when userID is present) and
// today's voted set for ip, then attaches both flags. Input ordering is
// preserved; no other field is touched.
func (p *Pipeline) Enrich(ctx context.Context, coins []models.Coin, ip, userID string) ([]models.EnrichedCoin, error) {
	ids := coinIDs(coins)

	var favorited []string
	if userID != "" {
		var err error
		favorited, err = p.favorites.CoinIDsForUser(ctx, userID, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve favorites: %w", err)
		}
	}
	return p.EnrichWithFavorites(ctx, coins, ip, favorited)
}

// EnrichWithFavorites attaches flags using an externally-resolved
// favorite set, for call sites that already hold it (the per-user
// favorites listing favors this to avoid a second query).
func (p *Pipeline) EnrichWithFavorites(ctx context.Context, coins []models.Coin, ip string, favorited []string) ([]models.EnrichedCoin, error) {
	ids := coinIDs(coins)

	var votedToday []string
	if ip != "" && len(ids) > 0 {
		var err error
		votedToday, err = p.votes.CoinIDsVotedSince(ctx, ip, ids, voting.TodayStartUTC(p.now()))
		if err != nil {
			return nil, fmt.Errorf("resolve votes: %w", err)
		}
	}

	favSet := toSet(favorited)
	voteSet := toSet(votedToday)

	out := make([]models.EnrichedCoin, len(coins))
	for i, c := range coins {
		out[i] = models.EnrichedCoin{
			Coin:        c,
			UserVoted:   voteSet[c.ID],
			IsFavorited: favSet[c.ID],
		}
	}
	return out, nil
}

// EnrichPage is Enrich over a whole page.
func (p *Pipeline) EnrichPage(ctx context.Context, page *models.Page, ip, userID string) (*models.EnrichedPage, error) {
	items, err := p.Enrich(ctx, page.Items, ip, userID)
	if err != nil {
		return nil, err
	}
	return &models.EnrichedPage{
		Items:    items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

// WithClock replaces the time source. Test helper.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

func coinIDs(coins []models.Coin) []string {
	ids := make([]string, len(coins))
	for i, c := range coins {
		ids[i] = c.ID
	}
	return ids
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
