// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

// Package config loads Familymap configuration.
//
// Loading order (later layers win):
//  1. Built-in defaults
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/familymap/config.yaml)
//  3. Environment variables, including those read from a .env file by the binaries
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	JWT       JWTConfig       `koanf:"jwt"`
	Security  SecurityConfig  `koanf:"security"`
	AI        AIConfig        `koanf:"ai"`
	Geocoding GeocodingConfig `koanf:"geocoding"`
	Scraping  ScrapingConfig  `koanf:"scraping"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// JWTConfig controls token lifetimes and the refresh blacklist.
type JWTConfig struct {
	Secret                 string        `koanf:"secret"`
	Issuer                 string        `koanf:"issuer"`
	AccessTokenLifetime    time.Duration `koanf:"access_token_lifetime"`
	RefreshTokenLifetime   time.Duration `koanf:"refresh_token_lifetime"`
	RotateRefreshTokens    bool          `koanf:"rotate_refresh_tokens"`
	BlacklistAfterRotation bool          `koanf:"blacklist_after_rotation"`
	BlacklistStore         string        `koanf:"blacklist_store"` // memory or badger
	BlacklistPath          string        `koanf:"blacklist_path"`
	BlacklistCleanup       time.Duration `koanf:"blacklist_cleanup_interval"`
}

// SecurityConfig holds HTTP hardening and login protection settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	LoginRateLimit    int           `koanf:"login_rate_limit"` // per IP per minute
	LockoutAttempts   int           `koanf:"lockout_attempts"`
	LockoutDuration   time.Duration `koanf:"lockout_duration"`
}

// AIConfig configures the OpenAI client used for place enrichment.
type AIConfig struct {
	APIKey      string        `koanf:"api_key"`
	BaseURL     string        `koanf:"base_url"`
	Model       string        `koanf:"model"`
	Temperature float32       `koanf:"temperature"`
	Country     string        `koanf:"country"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxRetries  int           `koanf:"max_retries"`
}

// Enabled reports whether an API key is configured.
func (c AIConfig) Enabled() bool { return c.APIKey != "" }

// GeocodingConfig configures the Mapbox forward geocoder.
type GeocodingConfig struct {
	MapboxAPIKey      string        `koanf:"mapbox_api_key"`
	BaseURL           string        `koanf:"base_url"`
	DefaultCountry    string        `koanf:"default_country"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	CacheTTL          time.Duration `koanf:"cache_ttl"`
	Timeout           time.Duration `koanf:"timeout"`
}

// Enabled reports whether a Mapbox key is configured.
func (c GeocodingConfig) Enabled() bool { return c.MapboxAPIKey != "" }

// ScrapingConfig holds import and enrichment settings.
type ScrapingConfig struct {
	RawFilesDir       string `koanf:"raw_files_dir"`
	EnrichWorkers     int    `koanf:"enrich_workers"`
	QueueBuffer       int    `koanf:"queue_buffer"`
	AsyncEnrichEnable bool   `koanf:"async_enrich_enabled"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from all layers and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
