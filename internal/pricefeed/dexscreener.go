// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package pricefeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/coindeck/coindeck/internal/logging"
	"github.com/coindeck/coindeck/internal/models"
)

// DefaultBaseURL is the public dexscreener endpoint.
const DefaultBaseURL = "https://api.dexscreener.com"

// maxErrorBodySize limits how much of an error response is read for
// diagnostics.
const maxErrorBodySize = 64 * 1024

// DexScreener fetches token market data from the dexscreener pairs API.
// Safe for concurrent use.
type DexScreener struct {
	baseURL string
	client  *http.Client
}

// NewDexScreener creates a dexscreener client. An empty baseURL selects
// the public endpoint.
func NewDexScreener(baseURL string, timeout time.Duration) *DexScreener {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DexScreener{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// pairsResponse mirrors the subset of the dexscreener pair schema the
// platform consumes. priceUsd arrives as a string.
type pairsResponse struct {
	Pairs []struct {
		ChainID     string `json:"chainId"`
		PriceUsd    string `json:"priceUsd"`
		PriceChange struct {
			H24 float64 `json:"h24"`
		} `json:"priceChange"`
		Liquidity struct {
			USD float64 `json:"usd"`
		} `json:"liquidity"`
		FDV       float64 `json:"fdv"`
		MarketCap float64 `json:"marketCap"`
	} `json:"pairs"`
}

// Quote fetches market data for the token at address on chain. A token
// with no pairs, or a malformed body, yields zero-valued PriceData and
// no error; only transport-level failures are reported.
func (d *DexScreener) Quote(ctx context.Context, chain, address string) (models.PriceData, error) {
	reqURL := d.baseURL + "/latest/dex/tokens/" + url.PathEscape(address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return models.PriceData{}, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return models.PriceData{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return models.PriceData{}, fmt.Errorf("dexscreener returned HTTP %d: %s", resp.StatusCode, body)
	}

	var parsed pairsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		logging.Warn().Err(err).Str("address", address).Msg("Undecodable dexscreener response")
		return models.PriceData{}, nil
	}

	// Pick the pair on the requested chain with the deepest liquidity;
	// tokens commonly trade in several pools.
	best := -1
	for i, p := range parsed.Pairs {
		if chain != "" && p.ChainID != chain {
			continue
		}
		if best < 0 || p.Liquidity.USD > parsed.Pairs[best].Liquidity.USD {
			best = i
		}
	}
	if best < 0 {
		return models.PriceData{}, nil
	}

	pair := parsed.Pairs[best]
	price, err := strconv.ParseFloat(pair.PriceUsd, 64)
	if err != nil {
		price = 0
	}
	mkap := pair.MarketCap
	if mkap == 0 {
		mkap = pair.FDV
	}
	return models.PriceData{
		Price:     price,
		Price24h:  pair.PriceChange.H24,
		Mkap:      mkap,
		Liquidity: pair.Liquidity.USD,
	}, nil
}
