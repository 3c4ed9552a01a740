// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/coindeck/coindeck/internal/logging"
	"github.com/coindeck/coindeck/internal/models"
)

// respondJSON writes the standard success envelope.
func respondJSON(w http.ResponseWriter, status int, data interface{}, meta models.Metadata) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: meta,
	}); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes the standard error envelope.
func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: code, Message: message},
	}); err != nil {
		logging.Error().Err(err).Msg("Failed to encode error response")
	}
}
