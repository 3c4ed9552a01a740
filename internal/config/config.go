// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package config defines the application configuration and its layered
// loader: struct defaults, then an optional YAML file, then environment
// variables. ENV > file > defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Cache     CacheConfig     `koanf:"cache"`
	Auth      AuthConfig      `koanf:"auth"`
	PriceFeed PriceFeedConfig `koanf:"pricefeed"`
	Views     ViewsConfig     `koanf:"views"`
	Voting    VotingConfig    `koanf:"voting"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	DefaultPageSize int           `koanf:"default_page_size"`
	MaxPageSize     int           `koanf:"max_page_size"`
}

// CacheConfig selects and tunes the query result cache backend.
type CacheConfig struct {
	// Backend is one of "memory", "redis", "badger".
	Backend     string        `koanf:"backend"`
	RedisAddr   string        `koanf:"redis_addr"`
	RedisDB     int           `koanf:"redis_db"`
	BadgerPath  string        `koanf:"badger_path"`
	QueryTTL    time.Duration `koanf:"query_ttl"`
	TrendingTTL time.Duration `koanf:"trending_ttl"`
}

// AuthConfig holds token verification settings.
type AuthConfig struct {
	JWTSecret     string        `koanf:"jwt_secret"`
	TokenLifetime time.Duration `koanf:"token_lifetime"`
}

// PriceFeedConfig tunes the market data refresher.
type PriceFeedConfig struct {
	Enabled         bool          `koanf:"enabled"`
	BaseURL         string        `koanf:"base_url"`
	Timeout         time.Duration `koanf:"timeout"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	RequestsPerSec  float64       `koanf:"requests_per_sec"`
	Workers         int           `koanf:"workers"`
}

// ViewsConfig tunes coin view tracking.
type ViewsConfig struct {
	Retention time.Duration `koanf:"retention"`
}

// VotingConfig tunes the vote ledger.
type VotingConfig struct {
	// SerializePerVoter closes the duplicate-vote race with a
	// per-(coin, ip) mutex. Disable only for single-writer setups.
	SerializePerVoter bool `koanf:"serialize_per_voter"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks invariants that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	switch c.Cache.Backend {
	case "memory", "redis", "badger":
	default:
		return fmt.Errorf("cache.backend must be memory, redis or badger, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required for the redis backend")
	}
	if c.Cache.Backend == "badger" && c.Cache.BadgerPath == "" {
		return fmt.Errorf("cache.badger_path is required for the badger backend")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 bytes")
	}
	if c.Server.MaxPageSize < c.Server.DefaultPageSize {
		return fmt.Errorf("server.max_page_size must be >= server.default_page_size")
	}
	return nil
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
