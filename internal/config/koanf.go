// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/familymap/config.yaml",
	"/etc/familymap/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:      "data/familymap.duckdb",
			MaxMemory: "1GB",
		},
		JWT: JWTConfig{
			Issuer:                 "familymap",
			AccessTokenLifetime:    5 * time.Minute,
			RefreshTokenLifetime:   24 * time.Hour,
			RotateRefreshTokens:    false,
			BlacklistAfterRotation: false,
			BlacklistStore:         "memory",
			BlacklistPath:          "data/blacklist",
			BlacklistCleanup:       10 * time.Minute,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			LoginRateLimit:  10,
			LockoutAttempts: 5,
			LockoutDuration: 15 * time.Minute,
		},
		AI: AIConfig{
			Model:       "gpt-4.1-mini-2025-04-14",
			Temperature: 0.3,
			Country:     "SK",
			Timeout:     2 * time.Minute,
			MaxRetries:  3,
		},
		Geocoding: GeocodingConfig{
			BaseURL:           "https://api.mapbox.com",
			DefaultCountry:    "us",
			RequestsPerSecond: 5,
			CacheTTL:          24 * time.Hour,
			Timeout:           10 * time.Second,
		},
		Scraping: ScrapingConfig{
			RawFilesDir:   "scraping/raw_files",
			EnrichWorkers: 2,
			QueueBuffer:   64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf layers defaults, an optional YAML file and environment
// variables, then validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names to koanf paths.
// SECRET_KEY is accepted as an alias of JWT_SECRET.
var envMappings = map[string]string{
	"http_port":        "server.port",
	"http_host":        "server.host",
	"read_timeout":     "server.read_timeout",
	"write_timeout":    "server.write_timeout",
	"idle_timeout":     "server.idle_timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"jwt_secret":               "jwt.secret",
	"secret_key":               "jwt.secret",
	"jwt_issuer":               "jwt.issuer",
	"access_token_lifetime":    "jwt.access_token_lifetime",
	"refresh_token_lifetime":   "jwt.refresh_token_lifetime",
	"rotate_refresh_tokens":    "jwt.rotate_refresh_tokens",
	"blacklist_after_rotation": "jwt.blacklist_after_rotation",
	"token_blacklist_store":    "jwt.blacklist_store",
	"token_blacklist_path":     "jwt.blacklist_path",
	"token_blacklist_cleanup":  "jwt.blacklist_cleanup_interval",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"login_rate_limit":    "security.login_rate_limit",
	"lockout_attempts":    "security.lockout_attempts",
	"lockout_duration":    "security.lockout_duration",

	"openai_api_key":     "ai.api_key",
	"openai_base_url":    "ai.base_url",
	"openai_model":       "ai.model",
	"openai_temperature": "ai.temperature",
	"openai_country":     "ai.country",
	"openai_timeout":     "ai.timeout",
	"openai_max_retries": "ai.max_retries",

	"mapbox_api_key":    "geocoding.mapbox_api_key",
	"mapbox_base_url":   "geocoding.base_url",
	"mapbox_country":    "geocoding.default_country",
	"mapbox_rps":        "geocoding.requests_per_second",
	"geocode_cache_ttl": "geocoding.cache_ttl",
	"mapbox_timeout":    "geocoding.timeout",

	"scraping_raw_dir":     "scraping.raw_files_dir",
	"enrich_workers":       "scraping.enrich_workers",
	"enrich_queue_buffer":  "scraping.queue_buffer",
	"enrich_async_enabled": "scraping.async_enrich_enabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable to a config path.
// Unmapped variables return "" and are ignored.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile calls callback whenever the file at path changes.
// Callers are responsible for synchronizing access to a reloaded Config.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
