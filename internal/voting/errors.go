// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package voting implements the vote ledger and the one-vote-per-IP-per-
// UTC-day invariant.
package voting

import (
	"errors"
	"fmt"
)

// ErrInvalid reports a malformed vote request (missing coin ID or IP).
var ErrInvalid = errors.New("invalid vote request")

// AlreadyVotedError reports a daily-vote invariant violation. It carries
// the coin's display name for the user-facing error message.
type AlreadyVotedError struct {
	CoinName string
}

func (e *AlreadyVotedError) Error() string {
	return fmt.Sprintf("already voted for %s today", e.CoinName)
}

// PersistenceError reports a collection write failure. Unlike cache and
// price-feed failures it propagates to the caller: the source of truth
// could not be updated.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
