// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coindeck/coindeck/internal/auth"
	"github.com/coindeck/coindeck/internal/authz"
	"github.com/coindeck/coindeck/internal/config"
	"github.com/coindeck/coindeck/internal/middleware"
)

// Router assembles the HTTP surface from the handler and the auth
// stack.
type Router struct {
	handler  *Handler
	jwt      *auth.JWTManager
	enforcer *authz.Enforcer
	server   config.ServerConfig
}

// NewRouter creates the router.
func NewRouter(h *Handler, jwt *auth.JWTManager, enforcer *authz.Enforcer, server config.ServerConfig) *Router {
	return &Router{handler: h, jwt: jwt, enforcer: enforcer, server: server}
}

// Routes builds the full route tree.
//
// Middleware layering, outermost first: request ID, real IP, panic
// recovery and CORS apply everywhere. Rate limits and Prometheus
// instrumentation are per-group. Identity resolution runs on every API
// route so enrichment can see logged-in viewers; Require and Authorize
// gate only the routes that need them.
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	rateLimit := httprate.LimitByIP(rt.rateLimitReqs(), rt.rateLimitWindow())

	// Health endpoints stay outside the API rate limit so monitoring
	// cannot be starved by traffic spikes.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Get("/", rt.handler.Health)
		r.Get("/live", rt.handler.HealthLive)
		r.Get("/ready", rt.handler.HealthReady)
	})

	// Public listings. Identity is optional but resolved when present
	// so userVoted/isFavorited reflect the logged-in viewer.
	r.Route("/api/v1/coins", func(r chi.Router) {
		r.Use(rateLimit)
		r.Use(middleware.Prometheus)
		r.Use(middleware.Resolve(rt.jwt))

		r.Get("/", rt.handler.Coins)
		r.Get("/pending", rt.handler.CoinsPending)
		r.Get("/approved", rt.handler.CoinsApproved)
		r.Get("/presale", rt.handler.CoinsPresale)
		r.Get("/fairlaunch", rt.handler.CoinsFairlaunch)
		r.Get("/promoted", rt.handler.CoinsPromoted)
		r.Get("/trending", rt.handler.CoinsTrending)
		r.Get("/{id}", rt.handler.Coin)

		// Voting and view tracking are keyed by IP, not account.
		r.Post("/{id}/vote", rt.handler.Vote)
		r.Post("/{id}/view", rt.handler.RecordView)

		// Submission and favorites need a logged-in user.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Require)
			r.Post("/", rt.handler.SubmitCoin)
			r.Post("/{id}/favorite", rt.handler.ToggleFavorite)
		})
	})

	// Per-user views.
	r.Route("/api/v1/users/me", func(r chi.Router) {
		r.Use(rateLimit)
		r.Use(middleware.Prometheus)
		r.Use(middleware.Resolve(rt.jwt))
		r.Use(middleware.Require)
		r.Use(middleware.Authorize(rt.enforcer))

		r.Get("/coins", rt.handler.MyCoins)
		r.Get("/favorites", rt.handler.MyFavorites)
	})

	// Moderation. Role comes from the token; the enforcer decides.
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(rateLimit)
		r.Use(middleware.Prometheus)
		r.Use(middleware.Resolve(rt.jwt))
		r.Use(middleware.Require)
		r.Use(middleware.Authorize(rt.enforcer))

		r.Get("/coins/pending", rt.handler.CoinsPending)
		r.Get("/coins/promoted", rt.handler.AdminCoinsPromoted)
		r.Post("/coins/{id}/approve", rt.handler.ApproveCoin)
		r.Post("/coins/{id}/decline", rt.handler.DeclineCoin)
		r.Post("/coins/{id}/promote", rt.handler.PromoteCoin)
		r.Put("/coins/{id}", rt.handler.UpdateCoin)
		r.Put("/coins/{id}/presale", rt.handler.SetPresale)
		r.Put("/coins/{id}/fairlaunch", rt.handler.SetFairlaunch)
		r.Delete("/coins/{id}", rt.handler.DeleteCoin)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (rt *Router) rateLimitReqs() int {
	if rt.server.RateLimitReqs > 0 {
		return rt.server.RateLimitReqs
	}
	return 300
}

func (rt *Router) rateLimitWindow() time.Duration {
	if rt.server.RateLimitWindow > 0 {
		return rt.server.RateLimitWindow
	}
	return time.Minute
}
