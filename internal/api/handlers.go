// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package api

import (
	"context"
	"time"

	"github.com/tomtom215/familymap/internal/auth"
	"github.com/tomtom215/familymap/internal/events"
	"github.com/tomtom215/familymap/internal/models"
	"github.com/tomtom215/familymap/internal/places"
	"github.com/tomtom215/familymap/internal/scraping"
	"github.com/tomtom215/familymap/internal/users"
)

// Pinger reports storage readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Enricher turns a scraped place into a place synchronously.
type Enricher interface {
	EnrichWithCity(ctx context.Context, scrapedPlaceID int64, city string) (*models.EnrichResult, error)
}

// JobQueue accepts asynchronous enrichment jobs.
type JobQueue interface {
	Enqueue(ctx context.Context, job events.EnrichJob) (string, error)
}

// HandlerOptions lists the handler dependencies. Enricher and Queue are
// optional; leave them nil (not typed nil) when enrichment is disabled.
type HandlerOptions struct {
	DB       Pinger
	Auth     *auth.Service
	Users    *users.Service
	Places   *places.Service
	Review   *scraping.ReviewQueue
	Importer *scraping.Importer
	Enricher Enricher
	Queue    JobQueue

	GeocodingEnabled bool
	Version          string
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files by route group:
//   - handlers_health.go: liveness and readiness
//   - handlers_auth.go: login, refresh, logout, info
//   - handlers_users.go: registration, lookups, admin role changes
//   - handlers_places.go: place directory
//   - handlers_scraping.go: import, review queue, enrichment
type Handler struct {
	db       Pinger
	auth     *auth.Service
	users    *users.Service
	places   *places.Service
	review   *scraping.ReviewQueue
	importer *scraping.Importer
	enricher Enricher
	queue    JobQueue

	geocodingEnabled bool
	version          string
	startTime        time.Time
}

// NewHandler creates the API handler.
func NewHandler(opts HandlerOptions) *Handler {
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		db:               opts.DB,
		auth:             opts.Auth,
		users:            opts.Users,
		places:           opts.Places,
		review:           opts.Review,
		importer:         opts.Importer,
		enricher:         opts.Enricher,
		queue:            opts.Queue,
		geocodingEnabled: opts.GeocodingEnabled,
		version:          version,
		startTime:        time.Now(),
	}
}
