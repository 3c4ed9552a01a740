// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package models defines the domain records shared across the service:
// coins, votes, favorites, coin views, result pages, and the API response
// envelope. All types are plain data with JSON tags; behavior lives in the
// owning services.
package models

import (
	"time"
)

// CoinStatus is the moderation state of a listing.
type CoinStatus string

const (
	StatusPending  CoinStatus = "pending"
	StatusApproved CoinStatus = "approved"
	StatusDenied   CoinStatus = "denied"
)

// Coin is a listed cryptocurrency/token. The document store owns the
// record; services only see transient query results.
//
// Votes and TodayVotes are incremented exclusively through the vote
// ledger. TodayVotes is reset to zero for all coins by the daily reset
// job at UTC midnight. Price fields are written by the price refresher,
// never by the core services.
type Coin struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Symbol     string     `json:"symbol"`
	Address    string     `json:"address,omitempty"`
	Chain      string     `json:"chain"`
	Logo       string     `json:"logo,omitempty"`
	Status     CoinStatus `json:"status"`
	Promoted   bool       `json:"promoted"`
	Votes      int64      `json:"votes"`
	TodayVotes int64      `json:"todayVotes"`
	Price      float64    `json:"price"`
	Price24h   float64    `json:"price24h"`
	Mkap       float64    `json:"mkap"`
	Liquidity  float64    `json:"liquidity"`
	// LaunchDate is nil for coins that have not announced a launch.
	// Sorting by days-since-launch excludes such coins.
	LaunchDate *time.Time `json:"launchDate,omitempty"`
	OwnerID    string     `json:"ownerId,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`

	// Filter predicates only; opaque to the core services.
	Presale    Presale    `json:"presale"`
	Fairlaunch Fairlaunch `json:"fairlaunch"`
	Audit      Audit      `json:"audit,omitempty"`
	KYC        KYC        `json:"kyc,omitempty"`
}

// Presale marks a coin as being in its presale phase.
type Presale struct {
	Active bool       `json:"active"`
	Link   string     `json:"link,omitempty"`
	EndsAt *time.Time `json:"endsAt,omitempty"`
}

// Fairlaunch marks a coin as a fair launch.
type Fairlaunch struct {
	Active bool       `json:"active"`
	Link   string     `json:"link,omitempty"`
	EndsAt *time.Time `json:"endsAt,omitempty"`
}

// Audit holds audit badge data. Filter predicate only.
type Audit struct {
	Audited bool   `json:"audited"`
	Link    string `json:"link,omitempty"`
}

// KYC holds KYC badge data. Filter predicate only.
type KYC struct {
	Verified bool   `json:"verified"`
	Link     string `json:"link,omitempty"`
}

// EnrichedCoin is a Coin plus the two per-viewer flags computed fresh on
// every request by the enrichment pipeline. The flags are never cached.
type EnrichedCoin struct {
	Coin
	UserVoted   bool `json:"userVoted"`
	IsFavorited bool `json:"isFavorited"`
}

// Page is one page of a listing query result, the unit stored in the
// query result cache. Items hold viewer-agnostic coins only.
type Page struct {
	Items    []Coin `json:"items"`
	Total    int64  `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// EnrichedPage is a Page whose items carry viewer flags.
type EnrichedPage struct {
	Items    []EnrichedCoin `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}
