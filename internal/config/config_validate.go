// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that required configuration is present and sane.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateJWT,
		c.validateSecurity,
		c.validateAI,
		c.validateGeocoding,
		c.validateScraping,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative")
	}
	return nil
}

const minJWTSecretLength = 32

func (c *Config) validateJWT() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET (or SECRET_KEY) is required")
	}
	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if containsPlaceholder(c.JWT.Secret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate one with: openssl rand -base64 32")
	}
	if c.JWT.AccessTokenLifetime <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_LIFETIME must be positive")
	}
	if c.JWT.RefreshTokenLifetime < c.JWT.AccessTokenLifetime {
		return fmt.Errorf("REFRESH_TOKEN_LIFETIME must not be shorter than ACCESS_TOKEN_LIFETIME")
	}
	switch c.JWT.BlacklistStore {
	case "memory":
	case "badger":
		if c.JWT.BlacklistPath == "" {
			return fmt.Errorf("TOKEN_BLACKLIST_PATH is required when TOKEN_BLACKLIST_STORE=badger")
		}
	default:
		return fmt.Errorf("TOKEN_BLACKLIST_STORE must be one of: memory, badger")
	}
	return nil
}

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateSecurity() error {
	if c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* is not allowed when ENVIRONMENT=production; list the allowed origins explicitly")
	}
	if c.Security.LockoutAttempts < 0 {
		return fmt.Errorf("LOCKOUT_ATTEMPTS must be non-negative")
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	if c.Security.LoginRateLimit < 1 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be at least 1")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func (c *Config) validateAI() error {
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("OPENAI_TEMPERATURE must be between 0 and 2")
	}
	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be non-negative")
	}
	if c.AI.BaseURL != "" {
		if err := validateHTTPURL(c.AI.BaseURL); err != nil {
			return fmt.Errorf("OPENAI_BASE_URL is invalid: %w", err)
		}
	}
	return nil
}

func (c *Config) validateGeocoding() error {
	if err := validateHTTPURL(c.Geocoding.BaseURL); err != nil {
		return fmt.Errorf("MAPBOX_BASE_URL is invalid: %w", err)
	}
	if c.Geocoding.RequestsPerSecond <= 0 {
		return fmt.Errorf("MAPBOX_RPS must be positive")
	}
	return nil
}

func (c *Config) validateScraping() error {
	if c.Scraping.RawFilesDir == "" {
		return fmt.Errorf("SCRAPING_RAW_DIR is required")
	}
	if c.Scraping.EnrichWorkers < 1 || c.Scraping.EnrichWorkers > 32 {
		return fmt.Errorf("ENRICH_WORKERS must be between 1 and 32")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"PLACEHOLDER",
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, p := range placeholderPatterns {
		if strings.Contains(upper, p) {
			return true
		}
	}
	return false
}
