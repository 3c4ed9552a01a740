// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package store

import "github.com/coindeck/coindeck/internal/models"

// CoinFilter is the filter specification for coin queries, assembled
// explicitly field by field. Nil pointer fields are absent from the
// filter; set fields combine with AND logic. Slice fields use OR logic
// within the field.
type CoinFilter struct {
	// Status filters by moderation state.
	Status *models.CoinStatus

	// Promoted filters by the promoted flag.
	Promoted *bool

	// Chains filters by chain (multi-select OR).
	Chains []string

	// InPresale / InFairlaunch filter on the presale and fairlaunch
	// predicates. False pointers exclude, true pointers require.
	InPresale    *bool
	InFairlaunch *bool

	// Audited / KYCVerified filter on the badge predicates.
	Audited     *bool
	KYCVerified *bool

	// OwnerID restricts to coins submitted by one user.
	OwnerID *string

	// IDs restricts to an explicit ID set (per-user favorites listing).
	IDs []string

	// HasLaunchDate requires (true) or forbids (false) a launch date.
	// Set by sort-specific query rules, not by callers directly.
	HasLaunchDate *bool

	// NonZeroPrice24h excludes coins whose 24h change is exactly zero.
	NonZeroPrice24h bool

	// NonZeroLiquidity excludes coins with zero liquidity.
	NonZeroLiquidity bool

	// Search is the free-text search term, if any.
	Search *SearchSpec
}

// SearchSpec describes a free-text search. Text always substring-matches
// name and symbol case-insensitively. When MatchAddress is set (the term
// is shaped like an address), the term additionally matches the address
// field exactly, case-insensitively.
type SearchSpec struct {
	Text         string
	MatchAddress bool
}

// SortField is a sortable coin column.
type SortField string

const (
	SortByVotes           SortField = "votes"
	SortByTodayVotes      SortField = "todayVotes"
	SortByPrice           SortField = "price"
	SortByPrice24h        SortField = "price24h"
	SortByMkap            SortField = "mkap"
	SortByLiquidity       SortField = "liquidity"
	SortByDaysSinceLaunch SortField = "daysSinceLaunch"
	SortByCreatedAt       SortField = "createdAt"
	SortByName            SortField = "name"
)

// CoinSort is the sort criteria for coin queries. The store always adds a
// secondary ID-ascending tie-break.
type CoinSort struct {
	Field SortField
	Desc  bool
}
