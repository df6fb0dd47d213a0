// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

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

// DefaultConfigPaths are searched in order; the first existing file is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/dishatlas/config.yaml",
	"/etc/dishatlas/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// Defaults returns the built-in configuration, before any file or
// environment overrides.
func Defaults() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        3857,
			Host:        "0.0.0.0",
			Timeout:     60 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			AuthMode:        "none",
			TokenTTL:        12 * time.Hour,
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		LLM: LLMConfig{
			BaseURL:           "https://api.openai.com/v1",
			PrimaryModel:      "gpt-4o-mini",
			FallbackModel:     "gpt-3.5-turbo",
			Timeout:           45 * time.Second,
			MaxRetries:        3,
			RetryBaseDelay:    time.Second,
			MaxTokens:         2000,
			Temperature:       0.4,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Storage: StorageConfig{
			BadgerPath: "/data/histories",
			DuckDBPath: "/data/dishatlas.duckdb",
			HistoryTTL: 30 * 24 * time.Hour,
		},
		Cache: CacheConfig{
			TTL:      30 * time.Minute,
			Capacity: 500,
		},
		Events: EventsConfig{
			Backend:  "memory",
			NATSURL:  "nats://127.0.0.1:4222",
			Embedded: true,
		},
		Discovery: DiscoveryConfig{
			FeaturedCount:   8,
			NearbyRadiusKm:  1500,
			SuggestionLimit: 10,
		},
	}
}

// LoadWithKoanf loads configuration in three layers (defaults, YAML file,
// environment) and validates the result. Environment variables win.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
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
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are accepted from the environment as comma-separated lists.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unlisted variables are ignored so unrelated environment never leaks in.
var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Security
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"token_ttl":           "security.token_ttl",
	"admin_username":      "security.admin_username",
	"admin_password_hash": "security.admin_password_hash",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// LLM
	"llm_base_url":         "llm.base_url",
	"llm_api_key":          "llm.api_key",
	"llm_model":            "llm.primary_model",
	"llm_fallback_model":   "llm.fallback_model",
	"llm_timeout":          "llm.timeout",
	"llm_max_retries":      "llm.max_retries",
	"llm_retry_base_delay": "llm.retry_base_delay",
	"llm_max_tokens":       "llm.max_tokens",
	"llm_temperature":      "llm.temperature",
	"llm_rps":              "llm.requests_per_second",
	"llm_burst":            "llm.burst",

	// Storage
	"badger_path": "storage.badger_path",
	"duckdb_path": "storage.duckdb_path",
	"history_ttl": "storage.history_ttl",

	// Cache
	"cache_ttl":      "cache.ttl",
	"cache_capacity": "cache.capacity",

	// Events
	"events_backend": "events.backend",
	"nats_url":       "events.nats_url",
	"nats_embedded":  "events.embedded",

	// Discovery
	"featured_count":   "discovery.featured_count",
	"nearby_radius_km": "discovery.nearby_radius_km",
	"suggestion_limit": "discovery.suggestion_limit",
}

// envTransformFunc maps HTTP_PORT to server.port and so on. It returns "" for
// unmapped variables, which koanf skips.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
