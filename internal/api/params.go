// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/coindeck/coindeck/internal/listing"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// parseListingParams decodes the listing query string. Unknown values
// fail fast so a typo never silently becomes an unfiltered full-table
// query cached under a fresh key.
func parseListingParams(r *http.Request, defaultPageSize, maxPageSize int) (listing.Params, error) {
	q := r.URL.Query()

	p := listing.DefaultParams()
	if defaultPageSize > 0 {
		p.PageSize = defaultPageSize
	}

	var err error
	if v := q.Get("page"); v != "" {
		if p.Page, err = strconv.Atoi(v); err != nil {
			return p, fmt.Errorf("page: %w", err)
		}
	}
	if v := q.Get("pageSize"); v != "" {
		if p.PageSize, err = strconv.Atoi(v); err != nil {
			return p, fmt.Errorf("pageSize: %w", err)
		}
	}
	if maxPageSize > 0 && p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	if v := q.Get("chains"); v != "" {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				p.Chains = append(p.Chains, c)
			}
		}
	}
	if p.Audited, err = boolParam(q.Get("audited")); err != nil {
		return p, fmt.Errorf("audited: %w", err)
	}
	if p.KYC, err = boolParam(q.Get("kyc")); err != nil {
		return p, fmt.Errorf("kyc: %w", err)
	}
	if p.Presale, err = boolParam(q.Get("presale")); err != nil {
		return p, fmt.Errorf("presale: %w", err)
	}
	if v := q.Get("sort"); v != "" {
		p.Sort = v
		// Explicit sorts default ascending unless desc is given.
		p.Desc = false
	}
	if v := q.Get("desc"); v != "" {
		d, err := strconv.ParseBool(v)
		if err != nil {
			return p, fmt.Errorf("desc: %w", err)
		}
		p.Desc = d
	}
	p.Search = strings.TrimSpace(q.Get("search"))

	p.Normalize()
	if err := validate.Struct(&p); err != nil {
		return p, err
	}
	return p, nil
}

// boolParam parses an optional tri-state boolean filter. Empty means
// "not filtered", which must stay distinct from false.
func boolParam(v string) (*bool, error) {
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
