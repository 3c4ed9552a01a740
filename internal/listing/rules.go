// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package listing

import (
	"github.com/coindeck/coindeck/internal/models"
	"github.com/coindeck/coindeck/internal/store"
)

// buildFilter assembles the filter specification for a query: the base
// predicate of the query kind, the caller's parameter filters, and the
// sort-specific exclusion rules.
//
// Sort rules, reproduced exactly:
//   - daysSinceLaunch excludes coins with no launch date set;
//   - price24h excludes coins in presale or fairlaunch and coins whose
//     24h change is exactly zero;
//   - liquidity excludes presale/fairlaunch coins and zero liquidity.
func buildFilter(base store.CoinFilter, p Params) store.CoinFilter {
	f := base
	if len(p.Chains) > 0 {
		f.Chains = p.Chains
	}
	if p.Audited != nil {
		f.Audited = p.Audited
	}
	if p.KYC != nil {
		f.KYCVerified = p.KYC
	}
	if p.Presale != nil {
		f.InPresale = p.Presale
	}
	f.Search = searchSpec(p.Search)

	no := false
	yes := true
	switch store.SortField(p.Sort) {
	case store.SortByDaysSinceLaunch:
		f.HasLaunchDate = &yes
	case store.SortByPrice24h:
		f.InPresale = &no
		f.InFairlaunch = &no
		f.NonZeroPrice24h = true
	case store.SortByLiquidity:
		f.InPresale = &no
		f.InFairlaunch = &no
		f.NonZeroLiquidity = true
	}
	return f
}

// sortOf converts params to the store sort criteria.
func sortOf(p Params) store.CoinSort {
	return store.CoinSort{Field: store.SortField(p.Sort), Desc: p.Desc}
}

// projectCoin copies the fixed response field subset. Owner identity is
// internal and never leaves the service through listing pages.
func projectCoin(c models.Coin) models.Coin {
	c.OwnerID = ""
	return c
}

func projectCoins(coins []models.Coin) []models.Coin {
	out := make([]models.Coin, len(coins))
	for i, c := range coins {
		out[i] = projectCoin(c)
	}
	return out
}

// Base filters per query kind.

func filterPending() store.CoinFilter {
	s := models.StatusPending
	return store.CoinFilter{Status: &s}
}

func filterApproved() store.CoinFilter {
	s := models.StatusApproved
	return store.CoinFilter{Status: &s}
}

func filterAdminPromoted() store.CoinFilter {
	promoted := true
	return store.CoinFilter{Promoted: &promoted}
}

func filterPromoted() store.CoinFilter {
	s := models.StatusApproved
	promoted := true
	return store.CoinFilter{Status: &s, Promoted: &promoted}
}

func filterPresale() store.CoinFilter {
	f := filterApproved()
	active := true
	f.InPresale = &active
	return f
}

func filterFairlaunch() store.CoinFilter {
	f := filterApproved()
	active := true
	f.InFairlaunch = &active
	return f
}

func filterUserCoins(userID string) store.CoinFilter {
	return store.CoinFilter{OwnerID: &userID}
}
