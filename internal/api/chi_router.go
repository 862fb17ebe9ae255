// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/familymap/internal/auth"
	"github.com/tomtom215/familymap/internal/middleware"
)

// Router wires handlers, middleware and authorization into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	resolver      auth.UserResolver
	authorizer    auth.Authorizer
}

// NewRouter creates a router. resolver authenticates bearer tokens and
// authorizer guards the admin routes.
func NewRouter(handler *Handler, mw *ChiMiddleware, resolver auth.UserResolver, authorizer auth.Authorizer) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
		resolver:      resolver,
		authorizer:    authorizer,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	requireAdmin := auth.RequireAdmin(router.authorizer)
	strict := router.chiMiddleware.RateLimitLogin()

	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())
	// The document itself is registered by the docs package.
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(auth.Authenticate(router.resolver))

		r.Route("/health", func(r chi.Router) {
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Get("/info", h.AuthInfo)
			r.With(strict).Post("/login", h.Login)
			r.Post("/refresh", h.RefreshToken)
			r.Post("/logout", h.Logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(strict).Post("/register", h.Register)
			r.Get("/me", h.Me)
			r.Get("/{id}", h.GetUser)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/", h.ListUsers)
				r.Get("/admins", h.ListAdmins)
				r.Post("/{id}/promote", h.PromoteAdmin)
				r.Post("/{id}/demote", h.DemoteAdmin)
			})
		})

		r.Route("/places", func(r chi.Router) {
			r.Get("/", h.ListPlaces)
			r.Get("/{id}", h.GetPlace)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/", h.CreatePlace)
				r.Put("/{id}", h.UpdatePlace)
				r.Delete("/{id}", h.DeletePlace)
			})
		})

		r.Route("/scraping", func(r chi.Router) {
			r.Use(requireAdmin)
			r.Post("/import", h.ImportScraped)
			r.Get("/review/next", h.ReviewNext)
			r.Get("/places", h.ListScrapedPlaces)
			r.Post("/places/{id}/processed", h.MarkProcessed)
			r.Post("/places/{id}/enrich", h.EnrichScrapedPlace)
		})
	})

	return r
}
