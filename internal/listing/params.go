// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package listing implements the query result cache: paginated, filtered,
// sorted coin listings cached under deterministic keys with a bounded TTL,
// consulted before the collection and repopulated on miss. Pages stored
// here are viewer-agnostic; per-viewer flags are attached afterwards by
// the enrichment pipeline.
package listing

import (
	"regexp"

	"github.com/coindeck/coindeck/internal/store"
)

// Params is the full parameter set of a listing query. Every field that
// affects the result is part of the cache key, so two requests differing
// in any field never share an entry.
//
// JSON tags define the serialized key shape; omitempty keeps keys short
// for the common unfiltered case.
type Params struct {
	Page     int    `json:"page" validate:"min=1"`
	PageSize int    `json:"pageSize" validate:"min=1,max=100"`
	Chains   []string `json:"chains,omitempty"`
	Audited  *bool  `json:"audited,omitempty"`
	KYC      *bool  `json:"kyc,omitempty"`
	Presale  *bool  `json:"presale,omitempty"`
	Sort     string `json:"sort,omitempty" validate:"omitempty,oneof=votes todayVotes price price24h mkap liquidity daysSinceLaunch createdAt name"`
	Desc     bool   `json:"desc,omitempty"`
	Search   string `json:"search,omitempty" validate:"max=120"`
}

// DefaultParams returns the first page with the default sort.
func DefaultParams() Params {
	return Params{Page: 1, PageSize: 25, Sort: string(store.SortByVotes), Desc: true}
}

// Normalize fills zero paging values with defaults.
func (p *Params) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 25
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	if p.Sort == "" {
		p.Sort = string(store.SortByVotes)
		p.Desc = true
	}
}

var (
	// hexAddressRe matches an EVM-style address: 0x followed by 40 hex
	// characters.
	hexAddressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

	// longAlnumRe matches 32+ alphanumerics, the shape of non-EVM chain
	// addresses (solana mints and the like).
	longAlnumRe = regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`)
)

// searchSpec converts the free-text term into a store search spec,
// detecting address-shaped terms. An address-shaped term additionally
// matches the address field exactly (case-insensitive) on top of the
// normal substring match against name and symbol.
func searchSpec(term string) *store.SearchSpec {
	if term == "" {
		return nil
	}
	return &store.SearchSpec{
		Text:         term,
		MatchAddress: hexAddressRe.MatchString(term) || longAlnumRe.MatchString(term),
	}
}
