// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package cache

import (
	"context"
	"fmt"

	"github.com/coindeck/coindeck/internal/logging"
	"github.com/coindeck/coindeck/internal/metrics"
)

// Scope is the semantic class of a mutation. Every write path declares
// exactly one scope; the invalidation table maps it to the cache-key
// prefixes that must be purged.
type Scope string

const (
	ScopePromotion   Scope = "promotion"
	ScopeApproval    Scope = "approval"
	ScopeDecline     Scope = "decline"
	ScopeUpdate      Scope = "update"
	ScopeUpdatePrice Scope = "update_price"
	ScopeVote        Scope = "vote"
	ScopeFavorite    Scope = "favorite"
	ScopeDelete      Scope = "delete"
	ScopeCreate      Scope = "create"
	ScopePresale     Scope = "presale"
	ScopeFairlaunch  Scope = "fairlaunch"
)

// Target is one invalidation target: a key prefix to purge, or a single
// exact key for entries with no parameter variation.
type Target struct {
	Key   string
	Exact bool
}

func prefix(p string) Target { return Target{Key: p} }
func exact(k string) Target  { return Target{Key: k, Exact: true} }

// Table maps scopes to invalidation targets. Constructed once at startup
// and injected into every component that triggers invalidation; never a
// hidden singleton.
type Table map[Scope][]Target

// DefaultTable returns the scope-to-prefix mapping.
//
// The mapping is intentionally over-inclusive: a scope purges more
// prefixes than strictly necessary so no stale read can survive a
// mutation, at the cost of extra cache-miss work. When a new cached view
// is added, every scope whose mutations could affect it must be extended
// here.
func DefaultTable() Table {
	allListings := []Target{
		prefix(KindCoinsPending),
		prefix(KindCoinsApproved),
		prefix(KindPresale),
		prefix(KindFairlaunch),
		prefix(KindAdminPromoted),
		prefix(KindFiltered),
		exact(KeyPromoted),
		prefix(KindUserCoins),
	}

	return Table{
		ScopePromotion: {
			exact(KeyPromoted),
			prefix(KindAdminPromoted),
			prefix(KindCoinsApproved),
			prefix(KindFiltered),
		},
		ScopeApproval: {
			prefix(KindCoinsPending),
			prefix(KindCoinsApproved),
			prefix(KindUserCoins),
		},
		ScopeDecline: {
			prefix(KindCoinsPending),
			prefix(KindUserCoins),
		},
		ScopeUpdate:      allListings,
		ScopeUpdatePrice: allListings,
		ScopeVote: {
			prefix(KindCoinsApproved),
			prefix(KindFiltered),
			exact(KeyPromoted),
			prefix(KindTrending),
		},
		ScopeFavorite: {
			prefix(KindUserFavorites),
		},
		ScopeDelete: append(append([]Target{}, allListings...),
			prefix(KindUserFavorites),
			prefix(KindTrending),
		),
		ScopeCreate: {
			prefix(KindCoinsPending),
			prefix(KindUserCoins),
		},
		ScopePresale: {
			prefix(KindPresale),
			prefix(KindCoinsApproved),
			prefix(KindFiltered),
		},
		ScopeFairlaunch: {
			prefix(KindFairlaunch),
			prefix(KindCoinsApproved),
			prefix(KindFiltered),
		},
	}
}

// Invalidator resolves scopes against a Table and issues the deletions.
type Invalidator struct {
	store Store
	table Table
}

// NewInvalidator binds a table to a cache store.
func NewInvalidator(store Store, table Table) *Invalidator {
	return &Invalidator{store: store, table: table}
}

// Invalidate purges every target mapped to the scope. Called
// synchronously immediately after the mutation's durable write. Errors
// from the store are already swallowed by the fail-open wrapper; an
// unknown scope is a programming error and is reported.
func (inv *Invalidator) Invalidate(ctx context.Context, scope Scope) error {
	targets, ok := inv.table[scope]
	if !ok {
		return fmt.Errorf("unknown invalidation scope %q", scope)
	}

	metrics.InvalidationsTotal.WithLabelValues(string(scope)).Inc()

	removed := 0
	for _, t := range targets {
		if t.Exact {
			_ = inv.store.DeleteExact(ctx, t.Key)
			removed++
			continue
		}
		n, _ := inv.store.DeleteByPrefix(ctx, t.Key)
		removed += n
	}

	metrics.InvalidatedKeys.Add(float64(removed))
	logging.Debug().Str("scope", string(scope)).Int("removed", removed).Msg("Cache scope invalidated")
	return nil
}
