// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package api provides HTTP routing and request handlers using the Chi
// router. Handlers translate HTTP requests into service calls, attach
// per-viewer enrichment to cached pages, and map domain errors onto
// status codes.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/coindeck/coindeck/internal/catalog"
	"github.com/coindeck/coindeck/internal/enrich"
	"github.com/coindeck/coindeck/internal/favorites"
	"github.com/coindeck/coindeck/internal/listing"
	"github.com/coindeck/coindeck/internal/logging"
	"github.com/coindeck/coindeck/internal/middleware"
	"github.com/coindeck/coindeck/internal/models"
	"github.com/coindeck/coindeck/internal/store"
	"github.com/coindeck/coindeck/internal/trending"
	"github.com/coindeck/coindeck/internal/voting"
)

// maxTrendingLimit caps the trending query so a caller cannot ask for
// the entire snapshot plus padding.
const maxTrendingLimit = 100

// Handler holds the service dependencies behind the HTTP surface.
type Handler struct {
	listing   *listing.Service
	votes     *voting.Ledger
	enricher  *enrich.Pipeline
	trending  *trending.Engine
	favorites *favorites.Service
	catalog   *catalog.Service

	defaultPageSize int
	maxPageSize     int

	// readyCheck reports backend readiness; nil means always ready.
	readyCheck func(context.Context) error
}

// NewHandler wires the handler. readyCheck may be nil.
func NewHandler(
	l *listing.Service,
	v *voting.Ledger,
	e *enrich.Pipeline,
	t *trending.Engine,
	f *favorites.Service,
	c *catalog.Service,
	defaultPageSize, maxPageSize int,
	readyCheck func(context.Context) error,
) *Handler {
	if defaultPageSize <= 0 {
		defaultPageSize = 25
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	return &Handler{
		listing:         l,
		votes:           v,
		enricher:        e,
		trending:        t,
		favorites:       f,
		catalog:         c,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		readyCheck:      readyCheck,
	}
}

// pageFetch is one cached paginated listing query.
type pageFetch func(ctx context.Context, p listing.Params) (*models.Page, bool, error)

// servePage runs one listing query and enriches the result for the
// caller. The cached page is viewer-agnostic; userVoted/isFavorited are
// recomputed from the collections on every request.
func (h *Handler) servePage(w http.ResponseWriter, r *http.Request, fetch pageFetch) {
	start := time.Now()

	p, err := parseListingParams(r, h.defaultPageSize, h.maxPageSize)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID", err.Error())
		return
	}

	page, cached, err := fetch(r.Context(), p)
	if err != nil {
		h.respondMapped(w, err)
		return
	}

	id, _ := middleware.IdentityFrom(r.Context())
	enriched, err := h.enricher.EnrichPage(r.Context(), page, clientIP(r), id.UserID)
	if err != nil {
		h.respondMapped(w, err)
		return
	}

	respondJSON(w, http.StatusOK, enriched, models.Metadata{
		Cached:      cached,
		QueryTimeMS: time.Since(start).Milliseconds(),
	})
}

// Coins serves GET /api/v1/coins, the filtered approved listing.
func (h *Handler) Coins(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.listing.Filtered)
}

// CoinsApproved serves GET /api/v1/coins/approved.
func (h *Handler) CoinsApproved(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.listing.Approved)
}

// CoinsPending serves GET /api/v1/coins/pending.
func (h *Handler) CoinsPending(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.listing.Pending)
}

// CoinsPresale serves GET /api/v1/coins/presale.
func (h *Handler) CoinsPresale(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.listing.Presale)
}

// CoinsFairlaunch serves GET /api/v1/coins/fairlaunch.
func (h *Handler) CoinsFairlaunch(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.listing.Fairlaunch)
}

// CoinsPromoted serves GET /api/v1/coins/promoted: every promoted
// approved coin, unpaginated, enriched per viewer.
func (h *Handler) CoinsPromoted(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	coins, cached, err := h.listing.Promoted(r.Context())
	if err != nil {
		h.respondMapped(w, err)
		return
	}

	id, _ := middleware.IdentityFrom(r.Context())
	enriched, err := h.enricher.Enrich(r.Context(), coins, clientIP(r), id.UserID)
	if err != nil {
		h.respondMapped(w, err)
		return
	}

	respondJSON(w, http.StatusOK, enriched, models.Metadata{
		Cached:      cached,
		QueryTimeMS: time.Since(start).Milliseconds(),
	})
}

// CoinsTrending serves GET /api/v1/coins/trending?limit=N. The ranking
// snapshot is shared across limits; only the slice length varies.
func (h *Handler) CoinsTrending(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "INVALID", "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxTrendingLimit {
		limit = maxTrendingLimit
	}

	coins, cached, err := h.trending.Top(r.Context(), limit)
	if err != nil {
		h.respondMapped(w, err)
		return
	}

	id, _ := middleware.IdentityFrom(r.Context())
	enriched, err := h.enricher.Enrich(r.Context(), coins, clientIP(r), id.UserID)
	if err != nil {
		h.respondMapped(w, err)
		return
	}

	respondJSON(w, http.StatusOK, enriched, models.Metadata{
		Cached:      cached,
		QueryTimeMS: time.Since(start).Milliseconds(),
	})
}

// Coin serves GET /api/v1/coins/{id}.
func (h *Handler) Coin(w http.ResponseWriter, r *http.Request) {
	coin, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondMapped(w, err)
		return
	}

	id, _ := middleware.IdentityFrom(r.Context())
	enriched, err := h.enricher.Enrich(r.Context(), []models.Coin{*coin}, clientIP(r), id.UserID)
	if err != nil {
		h.respondMapped(w, err)
		return
	}

	respondJSON(w, http.StatusOK, enriched[0], models.Metadata{})
}

// SubmitCoin serves POST /api/v1/coins. The submission always enters
// the pending queue regardless of what status the payload claims.
func (h *Handler) SubmitCoin(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())

	var c models.Coin
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID", "malformed coin payload")
		return
	}

	created, err := h.catalog.Submit(r.Context(), c, id.UserID)
	if err != nil {
		h.respondMapped(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created, models.Metadata{})
}

// Vote serves POST /api/v1/coins/{id}/vote. The voter identity is the
// client IP, so anonymous users can vote; the daily invariant is
// enforced per (coin, IP) per UTC day.
func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	coinID := chi.URLParam(r, "id")

	vote, coin, err := h.votes.CastVote(r.Context(), coinID, clientIP(r))
	if err != nil {
		h.respondMapped(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"vote": vote,
		"coin": coin,
	}, models.Metadata{})
}

// ToggleFavorite serves POST /api/v1/coins/{id}/favorite.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())

	favorited, err := h.favorites.Toggle(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondMapped(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"favorited": favorited}, models.Metadata{})
}

// RecordView serves POST /api/v1/coins/{id}/view. Repeat views from the
// same IP inside the dedup window are acknowledged but not counted.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	counted, err := h.catalog.RecordView(r.Context(), chi.URLParam(r, "id"), clientIP(r), r.UserAgent())
	if err != nil {
		h.respondMapped(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"counted": counted}, models.Metadata{})
}

// MyCoins serves GET /api/v1/users/me/coins.
func (h *Handler) MyCoins(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())
	h.servePage(w, r, func(ctx context.Context, p listing.Params) (*models.Page, bool, error) {
		return h.listing.UserCoins(ctx, id.UserID, p)
	})
}

// MyFavorites serves GET /api/v1/users/me/favorites.
func (h *Handler) MyFavorites(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())
	h.servePage(w, r, func(ctx context.Context, p listing.Params) (*models.Page, bool, error) {
		return h.listing.UserFavorites(ctx, id.UserID, p)
	})
}

// AdminCoinsPromoted serves GET /api/v1/admin/coins/promoted: promoted
// coins across all statuses, for the moderation dashboard.
func (h *Handler) AdminCoinsPromoted(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.listing.AdminPromoted)
}

// ApproveCoin serves POST /api/v1/admin/coins/{id}/approve.
func (h *Handler) ApproveCoin(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.catalog.Approve)
}

// DeclineCoin serves POST /api/v1/admin/coins/{id}/decline.
func (h *Handler) DeclineCoin(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.catalog.Decline)
}

// PromoteCoin serves POST /api/v1/admin/coins/{id}/promote. The body
// may carry {"promoted": false} to demote; absent bodies promote.
func (h *Handler) PromoteCoin(w http.ResponseWriter, r *http.Request) {
	promoted := true
	if r.Body != nil && r.ContentLength != 0 {
		var body struct {
			Promoted *bool `json:"promoted"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID", "malformed promote payload")
			return
		}
		if body.Promoted != nil {
			promoted = *body.Promoted
		}
	}

	if err := h.catalog.Promote(r.Context(), chi.URLParam(r, "id"), promoted); err != nil {
		h.respondMapped(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"promoted": promoted}, models.Metadata{})
}

// UpdateCoin serves PUT /api/v1/admin/coins/{id}. Moderation fields and
// vote counters in the payload are ignored; they only change through
// their dedicated endpoints.
func (h *Handler) UpdateCoin(w http.ResponseWriter, r *http.Request) {
	var c models.Coin
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID", "malformed coin payload")
		return
	}
	c.ID = chi.URLParam(r, "id")

	updated, err := h.catalog.Update(r.Context(), c)
	if err != nil {
		h.respondMapped(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated, models.Metadata{})
}

// SetPresale serves PUT /api/v1/admin/coins/{id}/presale.
func (h *Handler) SetPresale(w http.ResponseWriter, r *http.Request) {
	var p models.Presale
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID", "malformed presale payload")
		return
	}
	if err := h.catalog.SetPresale(r.Context(), chi.URLParam(r, "id"), p); err != nil {
		h.respondMapped(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p, models.Metadata{})
}

// SetFairlaunch serves PUT /api/v1/admin/coins/{id}/fairlaunch.
func (h *Handler) SetFairlaunch(w http.ResponseWriter, r *http.Request) {
	var f models.Fairlaunch
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID", "malformed fairlaunch payload")
		return
	}
	if err := h.catalog.SetFairlaunch(r.Context(), chi.URLParam(r, "id"), f); err != nil {
		h.respondMapped(w, err)
		return
	}
	respondJSON(w, http.StatusOK, f, models.Metadata{})
}

// DeleteCoin serves DELETE /api/v1/admin/coins/{id}.
func (h *Handler) DeleteCoin(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondMapped(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true}, models.Metadata{})
}

// Health serves GET /api/v1/health with the overall service status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if h.readyCheck != nil {
		if err := h.readyCheck(r.Context()); err != nil {
			status = "degraded"
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": status}, models.Metadata{})
}

// HealthLive serves GET /api/v1/health/live.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "alive"}, models.Metadata{})
}

// HealthReady serves GET /api/v1/health/ready. Readiness follows the
// cache backend; the in-process stores have no external dependency.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.readyCheck != nil {
		if err := h.readyCheck(r.Context()); err != nil {
			logging.Warn().Err(err).Msg("Readiness check failed")
			respondError(w, http.StatusServiceUnavailable, "NOT_READY", err.Error())
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"}, models.Metadata{})
}

// moderate runs one status transition keyed by the path coin ID.
func (h *Handler) moderate(w http.ResponseWriter, r *http.Request, op func(context.Context, string) error) {
	coinID := chi.URLParam(r, "id")
	if err := op(r.Context(), coinID); err != nil {
		h.respondMapped(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": coinID}, models.Metadata{})
}

// respondMapped translates domain errors onto HTTP status codes.
func (h *Handler) respondMapped(w http.ResponseWriter, err error) {
	var alreadyVoted *voting.AlreadyVotedError
	var persistence *voting.PersistenceError

	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, catalog.ErrCoinNotFound),
		errors.Is(err, favorites.ErrCoinNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "coin not found")
	case errors.As(err, &alreadyVoted):
		respondError(w, http.StatusConflict, "ALREADY_VOTED", alreadyVoted.Error())
	case errors.Is(err, voting.ErrInvalid), errors.Is(err, catalog.ErrInvalid),
		errors.Is(err, favorites.ErrInvalid):
		respondError(w, http.StatusBadRequest, "INVALID", err.Error())
	case errors.As(err, &persistence):
		logging.Error().Err(err).Msg("Persistence failure")
		respondError(w, http.StatusInternalServerError, "PERSISTENCE_FAILURE", "failed to persist the change")
	default:
		logging.Error().Err(err).Msg("Unhandled request error")
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

// clientIP returns the caller address without the port. The RealIP
// middleware has already resolved X-Forwarded-For upstream.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
