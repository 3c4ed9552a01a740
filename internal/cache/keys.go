// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package cache

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Query kinds double as cache-key prefixes. The persisted key shape is
// "<kind>:<jsonOfParams>" (per-user kinds insert the user ID between
// kind and params); it is kept human-readable on purpose so keys can be
// inspected under an outage.
const (
	KindCoinsPending  = "coinsPending"
	KindCoinsApproved = "coinsApproved"
	KindAdminPromoted = "adminPromoted"
	KindPresale       = "presale"
	KindFairlaunch    = "fairlaunch"
	KindFiltered      = "filtered"
	KindUserCoins     = "userCoins"
	KindUserFavorites = "userFavorites"
	KindTrending      = "trending"

	// KeyPromoted is the single globally-shared promoted-list key. It has
	// no parameter variation and is invalidated with DeleteExact.
	KeyPromoted = "promoted"

	// KeyTrending is the fixed key holding the full pre-slice trending
	// ranking. Limit is applied after the cache read, so it never appears
	// in the key.
	KeyTrending = KindTrending + ":all"
)

// Key builds the cache key for a query kind and its full parameter set.
// Serialization is deterministic: struct fields marshal in declaration
// order and map keys are sorted by the JSON encoder, so two semantically
// equal parameter sets always produce the same key regardless of how
// they were constructed.
func Key(kind string, params any) string {
	if params == nil {
		return kind
	}
	data, err := json.Marshal(params)
	if err != nil {
		// Marshal of a params struct cannot realistically fail; keep a
		// stable fallback rather than propagate.
		return fmt.Sprintf("%s:%v", kind, params)
	}
	return kind + ":" + string(data)
}

// UserKey builds a per-user cache key: "<kind>:<userID>:<jsonOfParams>".
// The kind prefix still groups all users' entries for prefix deletion.
func UserKey(kind, userID string, params any) string {
	return Key(kind+":"+userID, params)
}
