// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

// Package app wires Familymap's services from a loaded configuration. Both
// the API server and familymapctl build on it.
package app

import (
	"errors"
	"fmt"

	"github.com/tomtom215/familymap/internal/ai"
	"github.com/tomtom215/familymap/internal/api"
	"github.com/tomtom215/familymap/internal/auth"
	"github.com/tomtom215/familymap/internal/authz"
	"github.com/tomtom215/familymap/internal/config"
	"github.com/tomtom215/familymap/internal/database"
	"github.com/tomtom215/familymap/internal/events"
	"github.com/tomtom215/familymap/internal/geocoding"
	"github.com/tomtom215/familymap/internal/logging"
	"github.com/tomtom215/familymap/internal/places"
	"github.com/tomtom215/familymap/internal/scraping"
	"github.com/tomtom215/familymap/internal/users"
)

// Components holds the wired services. Optional parts are nil when their
// API key is not configured.
type Components struct {
	DB        *database.DB
	Blacklist auth.Blacklist
	Tokens    *auth.TokenService
	Lockout   *auth.LockoutManager
	Auth      *auth.Service
	Enforcer  *authz.Enforcer
	Users     *users.Service
	Places    *places.Service
	Review    *scraping.ReviewQueue
	Importer  *scraping.Importer

	AI       *ai.Client
	Geocoder *geocoding.MapboxGeocoder
	Enricher *scraping.Enricher
	Queue    *events.Queue
	Worker   *events.Worker

	closers []func() error
}

// Option adjusts what New builds.
type Option func(*options)

type options struct {
	withQueue bool
}

// WithoutQueue skips the enrichment queue and worker. familymapctl enriches
// inline and has no use for them.
func WithoutQueue() Option {
	return func(o *options) { o.withQueue = false }
}

// New opens the database and builds every service. On error, anything
// already opened is closed.
func New(cfg *config.Config, opts ...Option) (*Components, error) {
	o := options{withQueue: true}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Components{}
	if err := c.init(cfg, o); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Components) init(cfg *config.Config, o options) error {
	var err error

	c.DB, err = database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.closers = append(c.closers, c.DB.Close)
	logging.Info().Str("path", cfg.Database.Path).Msg("Database initialized")

	c.Blacklist, err = auth.NewBlacklist(&cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to open token blacklist: %w", err)
	}
	c.closers = append(c.closers, c.Blacklist.Close)

	c.Tokens, err = auth.NewTokenService(&cfg.JWT, c.Blacklist)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	c.Lockout = auth.NewLockoutManager(auth.LockoutConfigFromSecurity(&cfg.Security))
	hasher := auth.NewPasswordHasher(0)
	c.Auth = auth.NewService(c.DB, c.Tokens, hasher, c.Lockout)

	c.Enforcer, err = authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize authorization: %w", err)
	}
	c.closers = append(c.closers, func() error { c.Enforcer.Close(); return nil })

	c.Users = users.NewService(c.DB, hasher, config.DefaultPasswordPolicy())
	c.Places = places.NewService(c.DB)
	c.Review = scraping.NewReviewQueue(c.DB)
	c.Importer = scraping.NewImporter(c.DB, cfg.Scraping.RawFilesDir)

	return c.initEnrichment(cfg, o)
}

func (c *Components) initEnrichment(cfg *config.Config, o options) error {
	if cfg.Geocoding.Enabled() {
		g, err := geocoding.NewMapboxGeocoder(&cfg.Geocoding)
		if err != nil {
			return fmt.Errorf("failed to initialize geocoder: %w", err)
		}
		c.Geocoder = g
		c.closers = append(c.closers, func() error { g.Close(); return nil })
	} else {
		logging.Warn().Msg("MAPBOX_API_KEY is not set; enriched places without coordinates stay hidden")
	}

	if !cfg.AI.Enabled() {
		logging.Warn().Msg("OPENAI_API_KEY is not set; place enrichment is disabled")
		return nil
	}
	client, err := ai.NewClient(&cfg.AI)
	if err != nil {
		return fmt.Errorf("failed to initialize AI client: %w", err)
	}
	c.AI = client

	// A nil *MapboxGeocoder must not reach the interface.
	var geocoder geocoding.Geocoder
	if c.Geocoder != nil {
		geocoder = c.Geocoder
	}
	c.Enricher = scraping.NewEnricher(c.DB, client, geocoder, cfg.AI.Country)
	logging.Info().Str("model", client.Model()).Bool("geocoding", geocoder != nil).Msg("Place enrichment enabled")

	if !o.withQueue || !cfg.Scraping.AsyncEnrichEnable {
		return nil
	}
	queue, err := events.NewQueue(cfg.Scraping.QueueBuffer)
	if err != nil {
		return err
	}
	c.Queue = queue
	c.closers = append(c.closers, c.Queue.Close)

	wcfg := events.DefaultWorkerConfig()
	wcfg.IsPermanent = isPermanentEnrichError
	c.Worker = events.NewWorker(c.Queue, c.Enricher, wcfg)
	return nil
}

// isPermanentEnrichError reports failures that a retry cannot fix.
func isPermanentEnrichError(err error) bool {
	return errors.Is(err, scraping.ErrScrapedPlaceNotFound)
}

// EnricherOrNil returns the enricher for the API handler, or an untyped
// nil when enrichment is disabled.
func (c *Components) EnricherOrNil() api.Enricher {
	if c.Enricher == nil {
		return nil
	}
	return c.Enricher
}

// QueueOrNil returns the enrichment queue for the API handler, or an
// untyped nil when async enrichment is off.
func (c *Components) QueueOrNil() api.JobQueue {
	if c.Queue == nil {
		return nil
	}
	return c.Queue
}

// Close releases everything New opened, in reverse order.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			logging.Warn().Err(err).Msg("Error during shutdown")
		}
	}
	c.closers = nil
}
