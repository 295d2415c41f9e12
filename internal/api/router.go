// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

// Package api provides HTTP routing using the Chi router.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeStrusz/nmf-dashboard/internal/auth"
	"github.com/MikeStrusz/nmf-dashboard/internal/config"
	"github.com/MikeStrusz/nmf-dashboard/internal/middleware"
)

// Router assembles the HTTP surface: global middleware, public reads,
// and the admin-only mutation routes behind per-object authorization.
type Router struct {
	handler *Handler
	authMw  *auth.Middleware
	cfg     *config.Config
}

// NewRouter creates a Router. authMw must be non-nil even when auth_mode
// is "none"; the middleware itself handles the open mode.
func NewRouter(handler *Handler, authMw *auth.Middleware, cfg *config.Config) *Router {
	return &Router{
		handler: handler,
		authMw:  authMw,
		cfg:     cfg,
	}
}

// rateLimit returns an IP-keyed rate limiter, or a no-op middleware
// when rate limiting is disabled in config.
func (router *Router) rateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if router.cfg.Security.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(requests, window)
}

// corsHandler builds the CORS middleware from configured origins.
// Credentials are allowed because the admin session rides an HTTP-only cookie.
func (router *Router) corsHandler() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   router.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	})
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	reqs := router.cfg.Security.RateLimitReqs
	window := router.cfg.Security.RateLimitWindow

	// Global stack, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.corsHandler())

	// Health endpoints get a permissive limit so external monitors can
	// poll frequently without tripping the API limit.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.rateLimit(1000, time.Minute))
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Login gets the strictest limit to slow brute forcing of the single
	// admin account.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(router.rateLimit(5, 5*time.Minute)).Post("/login", router.handler.Login)
		r.Post("/logout", router.handler.Logout)
	})

	// Public read surface. Authenticate resolves the caller to admin or
	// anonymous; authorization only gates objects the anonymous role lacks.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.rateLimit(reqs, window))
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.authMw.Authenticate)

		r.Group(func(r chi.Router) {
			r.Use(router.authMw.Authorize(auth.ObjectPredictions, auth.ActionRead))
			r.Get("/predictions", router.handler.GetPredictions)
			r.Get("/predictions/weeks", router.handler.ListWeeks)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.authMw.Authorize(auth.ObjectGraph, auth.ActionRead))
			r.Get("/graph/dacus-number", router.handler.DacusNumber)
			r.Get("/graph/figure", router.handler.Figure)
			r.Get("/graph/artists", router.handler.ListArtists)
			r.Get("/graph/similar", router.handler.SimilarArtists)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.authMw.Authorize(auth.ObjectFeedback, auth.ActionRead))
			r.Get("/feedback", router.handler.GetFeedback)
			r.Get("/feedback/reviews", router.handler.ListReviews)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.authMw.Authorize(auth.ObjectPublicFeedback, auth.ActionRead))
			r.Get("/public-feedback", router.handler.GetPublicFeedback)
			r.Get("/public-feedback/reviews", router.handler.ListPublicReviews)
		})
		r.With(router.authMw.Authorize(auth.ObjectPublicFeedback, auth.ActionWrite)).
			Post("/public-feedback", router.handler.SubmitPublicFeedback)

		r.Get("/ws", router.handler.WebSocket)

		// Admin mutations. Public feedback moderation deletes sit behind
		// the admin feedback object so anonymous visitors can only append.
		r.Group(func(r chi.Router) {
			r.Use(router.authMw.Authorize(auth.ObjectFeedback, auth.ActionWrite))
			r.Post("/feedback", router.handler.SaveFeedback)
			r.Delete("/feedback", router.handler.DeleteFeedback)
			r.Delete("/public-feedback/{id}", router.handler.DeletePublicFeedback)
			r.Post("/public-feedback/bulk-delete", router.handler.BulkDeletePublicFeedback)
		})

		r.Route("/fixer", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(router.authMw.Authorize(auth.ObjectFixer, auth.ActionRead))
				r.Get("/nuked", router.handler.ListNuked)
				r.Get("/nuke-candidates", router.handler.NukeCandidates)
				r.Get("/missing-artwork", router.handler.MissingArtwork)
				r.Get("/missing-links", router.handler.MissingLinks)
			})
			r.Group(func(r chi.Router) {
				r.Use(router.authMw.Authorize(auth.ObjectFixer, auth.ActionWrite))
				r.Post("/cover", router.handler.UpdateCover)
				r.Post("/link", router.handler.UpdateLink)
				r.Post("/nuke", router.handler.Nuke)
				r.Post("/restore", router.handler.RestoreAlbum)
			})
		})

		r.Route("/backups", func(r chi.Router) {
			r.With(router.authMw.Authorize(auth.ObjectBackup, auth.ActionRead)).
				Get("/", router.handler.ListBackups)
			r.Group(func(r chi.Router) {
				r.Use(router.authMw.Authorize(auth.ObjectBackup, auth.ActionWrite))
				r.Post("/", router.handler.CreateBackup)
				r.Post("/{id}/restore", router.handler.RestoreBackup)
			})
		})

		r.With(router.authMw.Authorize(auth.ObjectPredictions, auth.ActionWrite)).
			Post("/admin/reimport", router.handler.Reimport)
	})

	// Prometheus scrape endpoint, outside the API envelope.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
