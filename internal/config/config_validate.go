// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
	minJWTSecretLength   = 32
	maxLLMRetries        = 10
	maxFeaturedCount     = 50
)

var (
	validLogLevels = map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	validLogFormats = map[string]bool{
		"json": true, "console": true,
	}
	validAuthModes = map[string]bool{
		"none": true, "jwt": true,
	}
	validEventBackends = map[string]bool{
		"memory": true, "nats": true,
	}
	placeholderPatterns = []string{
		"replace_with", "changeme", "change_me", "your_secret", "example",
	}
)

// Validate checks the configuration for invalid or unsafe values.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateSecurity,
		c.validateLogging,
		c.validateLLM,
		c.validateCache,
		c.validateEvents,
		c.validateDiscovery,
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
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if !validAuthModes[s.AuthMode] {
		return fmt.Errorf("AUTH_MODE must be one of none, jwt; got %q", s.AuthMode)
	}
	if s.AuthMode == "jwt" {
		if err := validateJWTSecret(s.JWTSecret); err != nil {
			return err
		}
		if s.AdminUsername == "" {
			return fmt.Errorf("ADMIN_USERNAME is required when AUTH_MODE=jwt")
		}
		if !strings.HasPrefix(s.AdminPasswordHash, "$2") {
			return fmt.Errorf("ADMIN_PASSWORD_HASH must be a bcrypt hash when AUTH_MODE=jwt")
		}
		if s.TokenTTL <= 0 {
			return fmt.Errorf("TOKEN_TTL must be positive, got %s", s.TokenTTL)
		}
	}

	if !s.RateLimitDisabled {
		if s.RateLimitReqs < minRateLimitRequests || s.RateLimitReqs > maxRateLimitRequests {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d, got %d",
				minRateLimitRequests, maxRateLimitRequests, s.RateLimitReqs)
		}
		if s.RateLimitWindow < minRateLimitWindow || s.RateLimitWindow > maxRateLimitWindow {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be between %s and %s, got %s",
				minRateLimitWindow, maxRateLimitWindow, s.RateLimitWindow)
		}
	}

	if c.IsProduction() {
		for _, origin := range s.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain a wildcard in production")
			}
		}
	}
	return nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if containsPlaceholder(secret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value; generate a random secret")
	}
	return nil
}

func containsPlaceholder(value string) bool {
	lower := strings.ToLower(value)
	for _, p := range placeholderPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateLLM() error {
	l := c.LLM
	if err := validateHTTPURL(l.BaseURL, "LLM_BASE_URL"); err != nil {
		return err
	}
	if l.PrimaryModel == "" {
		return fmt.Errorf("LLM_MODEL is required")
	}
	if l.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive, got %s", l.Timeout)
	}
	if l.MaxRetries < 0 || l.MaxRetries > maxLLMRetries {
		return fmt.Errorf("LLM_MAX_RETRIES must be between 0 and %d, got %d", maxLLMRetries, l.MaxRetries)
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %g", l.Temperature)
	}
	if l.RequestsPerSecond <= 0 {
		return fmt.Errorf("LLM_RPS must be positive, got %g", l.RequestsPerSecond)
	}
	if l.Burst < 1 {
		return fmt.Errorf("LLM_BURST must be at least 1, got %d", l.Burst)
	}
	return nil
}

func validateHTTPURL(rawURL, fieldName string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", fieldName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", fieldName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", fieldName)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Capacity < 1 {
		return fmt.Errorf("CACHE_CAPACITY must be at least 1, got %d", c.Cache.Capacity)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.Cache.TTL)
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !validEventBackends[c.Events.Backend] {
		return fmt.Errorf("EVENTS_BACKEND must be memory or nats, got %q", c.Events.Backend)
	}
	if c.Events.Backend == "nats" && !c.Events.Embedded && c.Events.NATSURL == "" {
		return fmt.Errorf("NATS_URL is required when using an external NATS server")
	}
	return nil
}

func (c *Config) validateDiscovery() error {
	d := c.Discovery
	if d.FeaturedCount < 1 || d.FeaturedCount > maxFeaturedCount {
		return fmt.Errorf("FEATURED_COUNT must be between 1 and %d, got %d", maxFeaturedCount, d.FeaturedCount)
	}
	if d.NearbyRadiusKm <= 0 {
		return fmt.Errorf("NEARBY_RADIUS_KM must be positive, got %g", d.NearbyRadiusKm)
	}
	if d.SuggestionLimit < 1 {
		return fmt.Errorf("SUGGESTION_LIMIT must be at least 1, got %d", d.SuggestionLimit)
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
