// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package store defines the document-store boundary consumed by the core
// services. The collection engine itself is an external collaborator; it
// is assumed to provide filtered/sorted/paginated finds, counts, and
// atomic single-document updates (findOneAndUpdate semantics). The
// in-memory implementations in this package back tests and dev mode.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/coindeck/coindeck/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// CoinStore is the coin collection boundary.
type CoinStore interface {
	// FindPage runs filter -> sort -> skip -> limit. Ties on the primary
	// sort column are broken by ID ascending so pagination is
	// deterministic across pages.
	FindPage(ctx context.Context, f CoinFilter, s CoinSort, skip, limit int) ([]models.Coin, error)

	// Count returns the number of coins matching the filter.
	Count(ctx context.Context, f CoinFilter) (int64, error)

	// FindByID returns the coin or ErrNotFound.
	FindByID(ctx context.Context, id string) (*models.Coin, error)

	Insert(ctx context.Context, c models.Coin) error

	// IncrementVotes atomically adds the deltas to votes and todayVotes
	// in a single update operation and returns the post-increment coin.
	// Returns ErrNotFound if the coin does not exist.
	IncrementVotes(ctx context.Context, id string, votes, todayVotes int64) (*models.Coin, error)

	UpdateStatus(ctx context.Context, id string, status models.CoinStatus) error
	SetPromoted(ctx context.Context, id string, promoted bool) error
	UpdatePrice(ctx context.Context, id string, pd models.PriceData) error
	Update(ctx context.Context, c models.Coin) error
	Delete(ctx context.Context, id string) error

	// ResetTodayVotes zeroes todayVotes on every coin (bulkWrite
	// semantics). Owned by the daily reset job, not the vote ledger.
	ResetTodayVotes(ctx context.Context) error

	// ListApproved returns every approved coin. Used by the trending
	// engine and the price refresher.
	ListApproved(ctx context.Context) ([]models.Coin, error)
}

// VoteStore is the vote collection boundary. Votes are append-only.
type VoteStore interface {
	Insert(ctx context.Context, v models.Vote) error

	// ExistsSince reports whether a vote for (coinID, ip) exists with
	// CreatedAt >= since.
	ExistsSince(ctx context.Context, coinID, ip string, since time.Time) (bool, error)

	// CoinIDsVotedSince returns the subset of coinIDs that ip has voted
	// for with CreatedAt >= since. One query, used by enrichment.
	CoinIDsVotedSince(ctx context.Context, ip string, coinIDs []string, since time.Time) ([]string, error)

	// DeleteByCoin removes all votes for a coin. Cascade cleanup owned
	// by the coin-deletion flow.
	DeleteByCoin(ctx context.Context, coinID string) error
}

// FavoriteStore is the favorites collection boundary.
type FavoriteStore interface {
	// Find returns the favorite for (userID, coinID) or ErrNotFound.
	Find(ctx context.Context, userID, coinID string) (*models.Favorite, error)

	Insert(ctx context.Context, f models.Favorite) error
	Delete(ctx context.Context, userID, coinID string) error

	// CoinIDsForUser returns the subset of coinIDs the user has
	// favorited. With a nil coinIDs it returns all of the user's
	// favorited coin IDs.
	CoinIDsForUser(ctx context.Context, userID string, coinIDs []string) ([]string, error)

	DeleteByCoin(ctx context.Context, coinID string) error
}

// ViewStore is the coin-view collection boundary. The trending engine
// only consumes the aggregate; the dedup invariant is enforced at write
// time by a conditional existence check.
type ViewStore interface {
	// Record inserts the view unless the same (coinID, ip) already has a
	// view within the dedup window ending now. Reports whether the view
	// was recorded.
	Record(ctx context.Context, v models.CoinView, window time.Duration) (bool, error)

	// DistinctViewCounts returns the distinct-IP view count per coin ID.
	DistinctViewCounts(ctx context.Context) (map[string]int64, error)

	DeleteByCoin(ctx context.Context, coinID string) error
}
