// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package pricefeed fetches market data for listed coins. Price data is
// best-effort: a failed fetch yields zero values, never an error that
// blocks a listing or a refresh cycle.
package pricefeed

import (
	"context"

	"github.com/coindeck/coindeck/internal/models"
)

// Provider returns current market data for a token contract.
type Provider interface {
	// Quote fetches price, 24h change, market cap and liquidity for the
	// token at address on chain. Implementations return a zero-valued
	// PriceData instead of an error for not-found or malformed upstream
	// responses; an error means the upstream could not be reached at all.
	Quote(ctx context.Context, chain, address string) (models.PriceData, error)
}
