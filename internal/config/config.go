// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

// Package config loads Dish Atlas configuration from built-in defaults, an
// optional YAML file and environment variables, in that order of precedence.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("invalid configuration")
//	}
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	LLM       LLMConfig       `koanf:"llm"`
	Storage   StorageConfig   `koanf:"storage"`
	Cache     CacheConfig     `koanf:"cache"`
	Events    EventsConfig    `koanf:"events"`
	Discovery DiscoveryConfig `koanf:"discovery"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// SecurityConfig holds rate limiting, CORS and admin authentication settings.
type SecurityConfig struct {
	// AuthMode is "none" (admin routes disabled) or "jwt".
	AuthMode string `koanf:"auth_mode"`

	JWTSecret     string        `koanf:"jwt_secret"`
	TokenTTL      time.Duration `koanf:"token_ttl"`
	AdminUsername string        `koanf:"admin_username"`

	// AdminPasswordHash is a bcrypt hash; the plain password is never configured.
	AdminPasswordHash string `koanf:"admin_password_hash"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// LLMConfig holds settings for the OpenAI-compatible chat completions endpoint
// that generates dish histories.
type LLMConfig struct {
	BaseURL        string        `koanf:"base_url"`
	APIKey         string        `koanf:"api_key"`
	PrimaryModel   string        `koanf:"primary_model"`
	FallbackModel  string        `koanf:"fallback_model"`
	Timeout        time.Duration `koanf:"timeout"`
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
	MaxTokens      int           `koanf:"max_tokens"`
	Temperature    float64       `koanf:"temperature"`

	// RequestsPerSecond throttles outbound calls; Burst allows short spikes.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// StorageConfig holds paths for the history store and the search log.
type StorageConfig struct {
	// BadgerPath is the directory for generated histories. Empty keeps them in memory.
	BadgerPath string `koanf:"badger_path"`

	// DuckDBPath is the search analytics database file. Empty uses an in-memory database.
	DuckDBPath string `koanf:"duckdb_path"`

	// HistoryTTL expires stored histories; zero keeps them forever.
	HistoryTTL time.Duration `koanf:"history_ttl"`
}

// CacheConfig controls the in-process history cache.
type CacheConfig struct {
	TTL      time.Duration `koanf:"ttl"`
	Capacity int           `koanf:"capacity"`
}

// EventsConfig selects the event bus backend.
type EventsConfig struct {
	// Backend is "memory" or "nats". The nats backend needs a binary built with -tags nats.
	Backend  string `koanf:"backend"`
	NATSURL  string `koanf:"nats_url"`
	Embedded bool   `koanf:"embedded"`
}

// DiscoveryConfig controls the featured dishes shown on the idle globe.
type DiscoveryConfig struct {
	FeaturedCount   int     `koanf:"featured_count"`
	NearbyRadiusKm  float64 `koanf:"nearby_radius_km"`
	SuggestionLimit int     `koanf:"suggestion_limit"`
}

// Configured reports whether an API key is set. Without one, histories come
// only from the static catalogue.
func (c LLMConfig) Configured() bool {
	return c.APIKey != ""
}

// Load loads configuration using koanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
