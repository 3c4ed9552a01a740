// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package voting

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coindeck/coindeck/internal/cache"
	"github.com/coindeck/coindeck/internal/metrics"
	"github.com/coindeck/coindeck/internal/models"
	"github.com/coindeck/coindeck/internal/store"
)

// Ledger enforces the daily-vote invariant and owns the only code path
// that increments a coin's vote counters.
type Ledger struct {
	coins       store.CoinStore
	votes       store.VoteStore
	invalidator *cache.Invalidator

	// serialize guards the check-then-insert window with a per-(coin,ip)
	// mutex when enabled. See Options.SerializePerVoter.
	serialize bool
	voterMu   sync.Map // "<coinID>|<ip>" -> *sync.Mutex

	now func() time.Time
}

// Options configures ledger behavior.
type Options struct {
	// SerializePerVoter closes the check-then-insert race: two
	// concurrent votes from the same IP for the same coin are serialized
	// on a per-(coin, ip) mutex, so the second observes the first's
	// insert and fails with AlreadyVotedError instead of double-counting.
	// When false the reference behavior is preserved: both requests can
	// pass the existence check and both insert, inflating the counters.
	SerializePerVoter bool
}

// NewLedger creates the vote ledger.
func NewLedger(coins store.CoinStore, votes store.VoteStore, inv *cache.Invalidator, opts Options) *Ledger {
	return &Ledger{
		coins:       coins,
		votes:       votes,
		invalidator: inv,
		serialize:   opts.SerializePerVoter,
		now:         time.Now,
	}
}

// TodayStartUTC returns 00:00:00 UTC of the calendar day containing t.
// The daily-vote invariant is defined over [TodayStartUTC, +24h).
func TodayStartUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// CastVote accepts or rejects one vote for coinID from ip.
//
// Order of operations: existence check on the coin, daily-invariant
// check against the vote collection, vote insert, then a single atomic
// counter increment on the coin. The increment must be atomic even
// though the preceding check is not, so concurrent votes from distinct
// IPs never lose updates.
//
// If the increment fails the inserted vote row is not rolled back; the
// counters simply miss one vote. Accepted inconsistency, kept from the
// reference system.
func (l *Ledger) CastVote(ctx context.Context, coinID, ip string) (*models.Vote, *models.Coin, error) {
	if coinID == "" || ip == "" {
		metrics.VotesRejected.WithLabelValues("invalid").Inc()
		return nil, nil, ErrInvalid
	}

	coin, err := l.coins.FindByID(ctx, coinID)
	if err != nil {
		metrics.VotesRejected.WithLabelValues("not_found").Inc()
		return nil, nil, err
	}

	if l.serialize {
		mu := l.voterLock(coinID, ip)
		mu.Lock()
		defer mu.Unlock()
	}

	since := TodayStartUTC(l.now())
	voted, err := l.votes.ExistsSince(ctx, coinID, ip, since)
	if err != nil {
		return nil, nil, &PersistenceError{Op: "check existing vote", Err: err}
	}
	if voted {
		metrics.VotesRejected.WithLabelValues("already_voted").Inc()
		return nil, nil, &AlreadyVotedError{CoinName: coin.Name}
	}

	vote := models.Vote{
		ID:        uuid.NewString(),
		CoinID:    coinID,
		IPAddress: ip,
		CreatedAt: l.now().UTC(),
		Organic:   true,
	}
	if err := l.votes.Insert(ctx, vote); err != nil {
		return nil, nil, &PersistenceError{Op: "insert vote", Err: err}
	}

	updated, err := l.coins.IncrementVotes(ctx, coinID, 1, 1)
	if err != nil {
		// The vote row stays; see method comment.
		return nil, nil, &PersistenceError{Op: "failed to update coin vote count", Err: err}
	}

	metrics.VotesAccepted.Inc()
	_ = l.invalidator.Invalidate(ctx, cache.ScopeVote)

	return &vote, updated, nil
}

// voterLock returns the mutex for one (coin, ip) pair.
func (l *Ledger) voterLock(coinID, ip string) *sync.Mutex {
	key := coinID + "|" + ip
	mu, _ := l.voterMu.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// WithClock replaces the time source. Test helper.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}
