// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package authz provides role-based authorization using Casbin. Roles
// come from the JWT claims; the policy maps roles to route patterns
// and methods. Model and policy ship embedded so the binary needs no
// external files.
package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Config holds enforcer options. Zero value uses the embedded model
// and policy with role "user" as the default.
type Config struct {
	// ModelPath overrides the embedded model when set.
	ModelPath string
	// PolicyPath overrides the embedded policy when set.
	PolicyPath string
	// DefaultRole is assumed for authenticated users with no role claim.
	DefaultRole string
}

// Enforcer answers "may this role call this route with this method".
// Safe for concurrent use.
type Enforcer struct {
	enforcer    *casbin.SyncedEnforcer
	defaultRole string
}

// NewEnforcer builds the enforcer from config.
func NewEnforcer(cfg *Config) (*Enforcer, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	defaultRole := cfg.DefaultRole
	if defaultRole == "" {
		defaultRole = "user"
	}

	var m model.Model
	var err error
	if cfg.ModelPath != "" {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" {
		adapter := fileadapter.NewAdapter(cfg.PolicyPath)
		enforcer, err = casbin.NewSyncedEnforcer(m, adapter)
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadEmbeddedPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	return &Enforcer{enforcer: enforcer, defaultRole: defaultRole}, nil
}

// loadEmbeddedPolicy parses the embedded policy CSV line by line.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		switch parts[0] {
		case "p":
			if len(parts) >= 4 {
				if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
					return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
				}
			}
		case "g":
			if len(parts) >= 3 {
				if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
					return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
				}
			}
		}
	}
	return nil
}

// Enforce reports whether role may issue method against path. An empty
// role falls back to the configured default.
func (e *Enforcer) Enforce(role, path, method string) (bool, error) {
	if role == "" {
		role = e.defaultRole
	}
	allowed, err := e.enforcer.Enforce(role, path, method)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	return allowed, nil
}
