// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "k3P9vQx7Lm2Zr8Tw4Yb6Nd1Hs5Jf0Ga9"

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Server.Port != 3857 {
		t.Errorf("Server.Port = %d, want 3857", cfg.Server.Port)
	}
	if cfg.Security.AuthMode != "none" {
		t.Errorf("Security.AuthMode = %q, want none", cfg.Security.AuthMode)
	}
	if cfg.Events.Backend != "memory" {
		t.Errorf("Events.Backend = %q, want memory", cfg.Events.Backend)
	}
	if cfg.LLM.Configured() {
		t.Error("LLM.Configured() = true with no API key")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"LLM_API_KEY", "llm.api_key"},
		{"LLM_MODEL", "llm.primary_model"},
		{"BADGER_PATH", "storage.badger_path"},
		{"EVENTS_BACKEND", "events.backend"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"cache_ttl", "cache.ttl"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("CORS_ORIGINS", "https://a.example.org, https://b.example.org")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if !cfg.LLM.Configured() {
		t.Error("LLM.Configured() = false, want true")
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache.TTL = %s, want 5m", cfg.Cache.TTL)
	}
	want := []string{"https://a.example.org", "https://b.example.org"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Security.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], want[i])
		}
	}
}

func TestLoadWithKoanf_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9000
  environment: staging
discovery:
  featured_count: 4
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Discovery.FeaturedCount != 4 {
		t.Errorf("Discovery.FeaturedCount = %d, want 4", cfg.Discovery.FeaturedCount)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn (env beats file)", cfg.Logging.Level)
	}
	if cfg.Cache.Capacity != 500 {
		t.Errorf("Cache.Capacity = %d, want default 500", cfg.Cache.Capacity)
	}
}

func TestLoadWithKoanf_InvalidFails(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("HTTP_PORT", "70000")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected validation error for port 70000")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"bad auth mode", func(c *Config) { c.Security.AuthMode = "basic" }, "AUTH_MODE"},
		{"jwt short secret", func(c *Config) {
			c.Security.AuthMode = "jwt"
			c.Security.JWTSecret = "short"
		}, "JWT_SECRET"},
		{"jwt placeholder secret", func(c *Config) {
			c.Security.AuthMode = "jwt"
			c.Security.JWTSecret = "replace_with_a_long_random_secret_value"
		}, "placeholder"},
		{"jwt missing admin", func(c *Config) {
			c.Security.AuthMode = "jwt"
			c.Security.JWTSecret = testSecret
		}, "ADMIN_USERNAME"},
		{"jwt plain password", func(c *Config) {
			c.Security.AuthMode = "jwt"
			c.Security.JWTSecret = testSecret
			c.Security.AdminUsername = "admin"
			c.Security.AdminPasswordHash = "hunter2"
		}, "bcrypt"},
		{"jwt complete", func(c *Config) {
			c.Security.AuthMode = "jwt"
			c.Security.JWTSecret = testSecret
			c.Security.AdminUsername = "admin"
			c.Security.AdminPasswordHash = "$2a$10$abcdefghijklmnopqrstuv"
		}, ""},
		{"rate limit too high", func(c *Config) { c.Security.RateLimitReqs = 200000 }, "RATE_LIMIT_REQUESTS"},
		{"rate limit disabled skips checks", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, ""},
		{"wildcard cors in production", func(c *Config) { c.Server.Environment = "production" }, "wildcard"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"llm url scheme", func(c *Config) { c.LLM.BaseURL = "ftp://llm.local" }, "LLM_BASE_URL"},
		{"llm missing model", func(c *Config) { c.LLM.PrimaryModel = "" }, "LLM_MODEL"},
		{"llm temperature", func(c *Config) { c.LLM.Temperature = 3 }, "LLM_TEMPERATURE"},
		{"cache capacity", func(c *Config) { c.Cache.Capacity = 0 }, "CACHE_CAPACITY"},
		{"events backend", func(c *Config) { c.Events.Backend = "kafka" }, "EVENTS_BACKEND"},
		{"external nats without url", func(c *Config) {
			c.Events.Backend = "nats"
			c.Events.Embedded = false
			c.Events.NATSURL = ""
		}, "NATS_URL"},
		{"featured count", func(c *Config) { c.Discovery.FeaturedCount = 0 }, "FEATURED_COUNT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Errorf("default environment should be development")
	}
	cfg.Server.Environment = "Production"
	if !cfg.IsProduction() {
		t.Errorf("IsProduction() = false for %q", cfg.Server.Environment)
	}
	cfg.Server.Host = "127.0.0.1"
	if got := cfg.Addr(); got != "127.0.0.1:3857" {
		t.Errorf("Addr() = %q, want 127.0.0.1:3857", got)
	}
}
