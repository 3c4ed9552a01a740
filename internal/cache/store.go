// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package cache provides the read-side cache store and its invalidation
// machinery: a key/value Store contract with TTL and prefix deletion,
// redis/badger/memory backends, deterministic cache-key construction, and
// the scope-to-prefix invalidation table.
//
// The whole package is fail-open by policy: the collection remains the
// source of truth, a cache outage degrades to misses and bounded
// staleness, never to request failures.
package cache

import (
	"context"
	"time"

	"github.com/coindeck/coindeck/internal/logging"
	"github.com/coindeck/coindeck/internal/metrics"
)

// Store is the cache store contract.
//
// DeleteByPrefix removes every key beginning with prefix + ":" present at
// the moment of the call; it makes no guarantee about keys written
// concurrently. DeletePipelined issues all deletions in one round trip;
// absence of an individual key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteExact(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) (removed int, err error)
	DeletePipelined(ctx context.Context, keys []string) error
}

// FailOpen wraps a Store with the fail-open policy: read errors become
// misses, write and delete errors are logged and swallowed. Correctness
// of the source of truth must never depend on cache availability.
type FailOpen struct {
	inner Store
}

// NewFailOpen wraps the given store.
func NewFailOpen(inner Store) *FailOpen {
	return &FailOpen{inner: inner}
}

func (f *FailOpen) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, found, err := f.inner.Get(ctx, key)
	if err != nil {
		metrics.CacheStoreErrors.WithLabelValues("get").Inc()
		logging.Warn().Err(err).Str("key", key).Msg("Cache read failed, treating as miss")
		return nil, false, nil
	}
	return value, found, nil
}

func (f *FailOpen) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := f.inner.Set(ctx, key, value, ttl); err != nil {
		metrics.CacheStoreErrors.WithLabelValues("set").Inc()
		logging.Warn().Err(err).Str("key", key).Msg("Cache write failed, continuing without cache")
	}
	return nil
}

func (f *FailOpen) DeleteExact(ctx context.Context, key string) error {
	if err := f.inner.DeleteExact(ctx, key); err != nil {
		metrics.CacheStoreErrors.WithLabelValues("delete").Inc()
		logging.Warn().Err(err).Str("key", key).Msg("Cache delete failed, entry will age out via TTL")
	}
	return nil
}

func (f *FailOpen) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	removed, err := f.inner.DeleteByPrefix(ctx, prefix)
	if err != nil {
		metrics.CacheStoreErrors.WithLabelValues("delete_prefix").Inc()
		logging.Warn().Err(err).Str("prefix", prefix).Msg("Cache prefix delete failed, entries will age out via TTL")
		return removed, nil
	}
	return removed, nil
}

func (f *FailOpen) DeletePipelined(ctx context.Context, keys []string) error {
	if err := f.inner.DeletePipelined(ctx, keys); err != nil {
		metrics.CacheStoreErrors.WithLabelValues("delete_pipelined").Inc()
		logging.Warn().Err(err).Int("keys", len(keys)).Msg("Pipelined cache delete failed, entries will age out via TTL")
	}
	return nil
}
