// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

// Package geocoding resolves place names to coordinates using the Mapbox
// Search Box API.
package geocoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/familymap/internal/cache"
	"github.com/tomtom215/familymap/internal/config"
	"github.com/tomtom215/familymap/internal/logging"
	"github.com/tomtom215/familymap/internal/metrics"
	"github.com/tomtom215/familymap/internal/resilience"
)

// ErrMissingAPIKey is returned when no Mapbox key is configured.
var ErrMissingAPIKey = errors.New("mapbox API key not found: set MAPBOX_API_KEY")

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder looks up coordinates for a place.
type Geocoder interface {
	// Geocode returns nil, nil when nothing matches.
	Geocode(ctx context.Context, placeName, city, country string) (*Coordinates, error)

	// Name returns the provider name for logging.
	Name() string

	// IsAvailable reports whether the provider is configured.
	IsAvailable() bool
}

const forwardPath = "/search/searchbox/v1/forward"

// MapboxGeocoder implements Geocoder with the Mapbox Search Box forward API.
type MapboxGeocoder struct {
	client         *http.Client
	apiKey         string
	baseURL        string
	defaultCountry string
	limiter        *rate.Limiter
	breaker        *resilience.CircuitBreaker[*Coordinates]
	cache          *cache.Cache[*Coordinates]
}

// mapboxResponse is the subset of the forward search response we use.
type mapboxResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
	} `json:"features"`
}

// NewMapboxGeocoder creates a geocoder from configuration.
func NewMapboxGeocoder(cfg *config.GeocodingConfig) (*MapboxGeocoder, error) {
	if cfg == nil || cfg.MapboxAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.mapbox.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &MapboxGeocoder{
		client:         &http.Client{Timeout: timeout},
		apiKey:         cfg.MapboxAPIKey,
		baseURL:        baseURL,
		defaultCountry: cfg.DefaultCountry,
		limiter:        rate.NewLimiter(rate.Limit(rps), 1),
		breaker:        resilience.NewCircuitBreaker[*Coordinates]("mapbox-api", resilience.DefaultSettings()),
		cache:          cache.New[*Coordinates](ttl, 10*time.Minute),
	}, nil
}

// Name returns the provider name.
func (g *MapboxGeocoder) Name() string {
	return "mapbox-searchbox"
}

// IsAvailable returns true when an API key is configured.
func (g *MapboxGeocoder) IsAvailable() bool {
	return g.apiKey != ""
}

// Close stops the result cache.
func (g *MapboxGeocoder) Close() {
	g.cache.Close()
}

// Geocode resolves "<placeName>, <city>" within country. An empty country
// falls back to the configured default, then "us".
func (g *MapboxGeocoder) Geocode(ctx context.Context, placeName, city, country string) (*Coordinates, error) {
	var parts []string
	if s := strings.TrimSpace(placeName); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(city); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return nil, nil
	}
	query := strings.Join(parts, ", ")

	if country == "" {
		country = g.defaultCountry
	}
	if country == "" {
		country = "us"
	}
	country = strings.ToLower(country)

	key := cache.GenerateKey("geocode", [2]string{country, strings.ToLower(query)})
	if coords, ok := g.cache.Get(key); ok {
		metrics.GeocodeCacheHits.Inc()
		return coords, nil
	}
	metrics.GeocodeCacheMisses.Inc()

	coords, err := g.breaker.Execute(func() (*Coordinates, error) {
		return g.forward(ctx, query, country)
	})
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("query", query).Msg("Geocoding failed")
		return nil, err
	}

	if coords == nil {
		metrics.GeocodeRequests.WithLabelValues("not_found").Inc()
	} else {
		metrics.GeocodeRequests.WithLabelValues("found").Inc()
	}
	g.cache.Set(key, coords)
	return coords, nil
}

func (g *MapboxGeocoder) forward(ctx context.Context, query, country string) (*Coordinates, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocoding rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("access_token", g.apiKey)
	params.Set("q", query)
	params.Set("limit", "1")
	params.Set("country", country)
	params.Set("types", "address,poi,place")
	params.Set("language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+forwardPath+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	logging.Ctx(ctx).Debug().Str("query", query).Str("country", country).Msg("Geocoding request")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocoding returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	if len(data.Features) == 0 {
		return nil, nil
	}
	c := data.Features[0].Geometry.Coordinates
	if len(c) < 2 {
		return nil, fmt.Errorf("geocoding feature has %d coordinates", len(c))
	}
	return &Coordinates{Latitude: c[1], Longitude: c[0]}, nil
}

var _ Geocoder = (*MapboxGeocoder)(nil)
