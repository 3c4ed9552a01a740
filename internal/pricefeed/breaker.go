// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package pricefeed

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/coindeck/coindeck/internal/logging"
	"github.com/coindeck/coindeck/internal/metrics"
	"github.com/coindeck/coindeck/internal/models"
)

// Breaker tuning: 1 minute measurement window in closed state, 2
// minutes open before probing again, trips at >=60% failure rate over
// at least 10 requests.
const (
	breakerInterval = time.Minute
	breakerTimeout  = 2 * time.Minute
)

// BreakerProvider wraps a Provider with a circuit breaker so a dead
// upstream stops consuming refresh budget. A rejected or failed call
// degrades to zero-valued PriceData at the Refresher, never an outage.
type BreakerProvider struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker[models.PriceData]
	name  string
}

// NewBreakerProvider wraps inner with a named circuit breaker.
func NewBreakerProvider(name string, inner Provider) *BreakerProvider {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[models.PriceData](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerProvider{inner: inner, cb: cb, name: name}
}

// Quote executes the wrapped provider under the breaker. An open
// circuit is reported as an error so the caller can distinguish
// "rejected locally" from "upstream reached but empty".
func (b *BreakerProvider) Quote(ctx context.Context, chain, address string) (models.PriceData, error) {
	data, err := b.cb.Execute(func() (models.PriceData, error) {
		return b.inner.Quote(ctx, chain, address)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.PriceFetchesTotal.WithLabelValues(chain, "breaker_open").Inc()
			return models.PriceData{}, err
		}
		metrics.PriceFetchesTotal.WithLabelValues(chain, "error").Inc()
		return models.PriceData{}, err
	}
	metrics.PriceFetchesTotal.WithLabelValues(chain, "ok").Inc()
	return data, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
