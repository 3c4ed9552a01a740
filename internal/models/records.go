// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package models

import "time"

// Vote is an immutable append-only record of one accepted vote.
//
// Invariant: for a given (CoinID, IPAddress) pair at most one Vote exists
// with CreatedAt inside the same UTC calendar day. Created only by the
// vote ledger's accept path; deleted only in bulk when a coin is deleted.
type Vote struct {
	ID        string    `json:"id"`
	CoinID    string    `json:"coinId"`
	IPAddress string    `json:"ipAddress"`
	CreatedAt time.Time `json:"createdAt"`
	Organic   bool      `json:"organic"`
}

// Favorite is a mutable join record with toggle semantics: existence
// means favorited. At most one record per (UserID, CoinID) pair, enforced
// by the toggle's find-then-create-or-delete logic, not by a store-level
// unique index.
type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CoinID    string    `json:"coinId"`
	CreatedAt time.Time `json:"createdAt"`
}

// CoinView is an append-only record consumed by the trending engine's
// view-count signal. Deduplicated per (CoinID, IPAddress) per 24h at
// write time; expires after a fixed retention window owned by the store.
type CoinView struct {
	ID        string    `json:"id"`
	CoinID    string    `json:"coinId"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PriceData is the quote shape returned by the price-fetch collaborator.
// A zero value is the degraded result on any upstream failure.
type PriceData struct {
	Price     float64 `json:"price"`
	Price24h  float64 `json:"price24h"`
	Mkap      float64 `json:"mkap"`
	Liquidity float64 `json:"liquidity"`
}
