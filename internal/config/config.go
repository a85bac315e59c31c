// ReelRank - Content-Based Movie Recommendation Service
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package config provides layered configuration management using koanf.
//
// Precedence, lowest to highest:
//
//  1. Struct defaults
//  2. YAML config file (optional)
//  3. Environment variables
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

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Artifact  ArtifactConfig  `koanf:"artifact"`
	Recommend RecommendConfig `koanf:"recommend"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// ArtifactConfig locates the precomputed catalog artifact.
type ArtifactConfig struct {
	Path string `koanf:"path"`
}

// RecommendConfig tunes title resolution.
type RecommendConfig struct {
	// Threshold is the minimum fuzzy match score (0-100) for a title
	// to resolve.
	Threshold float64 `koanf:"threshold"`
}

// SecurityConfig holds rate limiting and CORS settings.
type SecurityConfig struct {
	RateLimitDisabled bool     `koanf:"rate_limit_disabled"`
	CORSOrigins       []string `koanf:"cors_origins"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8000,
			Timeout: 30 * time.Second,
		},
		Artifact: ArtifactConfig{
			Path: "data/movie_artifacts.json",
		},
		Recommend: RecommendConfig{
			Threshold: 60,
		},
		Security: SecurityConfig{
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// envKeyMap maps flat environment variable names to config keys. Only the
// variables listed here are read; unrelated environment noise is ignored.
var envKeyMap = map[string]string{
	"HTTP_HOST":           "server.host",
	"HTTP_PORT":           "server.port",
	"HTTP_TIMEOUT":        "server.timeout",
	"ARTIFACT_PATH":       "artifact.path",
	"RESOLVE_THRESHOLD":   "recommend.threshold",
	"RATE_LIMIT_DISABLED": "security.rate_limit_disabled",
	"CORS_ORIGINS":        "security.cors_origins",
	"LOG_LEVEL":           "logging.level",
	"LOG_FORMAT":          "logging.format",
	"LOG_CALLER":          "logging.caller",
}

// sliceKeys are config keys whose env values are comma-separated lists.
var sliceKeys = map[string]bool{
	"security.cors_origins": true,
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("", ".", func(s string) string {
		if key, ok := envKeyMap[s]; ok {
			return key
		}
		return ""
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	processSliceFields(k)

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file path, checking the
// CONFIG_PATH override first and then conventional locations.
func findConfigFile() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	candidates := []string{
		"reelrank.yaml",
		"config/reelrank.yaml",
		"/etc/reelrank/reelrank.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// processSliceFields splits comma-separated env strings into string slices so
// koanf unmarshals them into []string fields.
func processSliceFields(k *koanf.Koanf) {
	for key := range sliceKeys {
		raw := k.Get(key)
		s, ok := raw.(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				values = append(values, trimmed)
			}
		}
		_ = k.Set(key, values)
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Artifact.Path == "" {
		return fmt.Errorf("artifact.path must not be empty")
	}
	if c.Recommend.Threshold < 0 || c.Recommend.Threshold > 100 {
		return fmt.Errorf("recommend.threshold must be between 0 and 100, got %g", c.Recommend.Threshold)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
