// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config types define the configuration structures used throughout
// fda-relay. These types represent settings that can be loaded from YAML
// configuration files, environment variables, or command-line flags.
package config

import "time"

// Config represents the complete configuration for fda-relay.
// It consolidates settings from various sources and provides a unified
// interface for accessing configuration values throughout the application.
type Config struct {
	FDA          FDAConfig                    `yaml:"fda"`
	Defaults     DefaultsConfig               `yaml:"defaults"`
	ProductCodes map[string]ProductCodeConfig `yaml:"product_codes"`
	RateLimit    RateLimitConfig              `yaml:"rate_limit"`
}

// FDAConfig contains openFDA-specific settings including the API endpoint
// and the name of the environment variable holding the API key. A custom
// endpoint supports routing through a caching proxy or a test double.
type FDAConfig struct {
	APIEndpoint string `yaml:"api_endpoint"`
	APIKeyEnv   string `yaml:"api_key_env"`
}

// DefaultsConfig contains default settings that apply to all fetch
// operations unless overridden by product-code-specific settings or
// command-line flags. These settings control the core behavior of the
// fetch process.
type DefaultsConfig struct {
	PageSize              int    `yaml:"page_size"`
	OutputFormat          string `yaml:"output_format"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// ProductCodeConfig contains product-code-specific overrides that allow
// fine-tuning fetch behavior per code. This is useful when certain codes
// carry very large summary texts and benefit from smaller pages.
type ProductCodeConfig struct {
	PageSize int `yaml:"page_size"`
}

// RateLimitConfig controls request pacing against the openFDA quota.
// A requests_per_minute of zero derives the quota from whether an API key
// is configured at run time.
type RateLimitConfig struct {
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	ShowProgress      bool `yaml:"show_progress"`
}

// DefaultConfig returns a Config with sensible defaults suitable for most
// use cases. These defaults target the public openFDA service but can be
// overridden for proxied or mirrored deployments.
func DefaultConfig() *Config {
	return &Config{
		FDA: FDAConfig{
			APIEndpoint: "https://api.fda.gov/device/510k.json",
			APIKeyEnv:   "FDA_API_KEY",
		},
		Defaults: DefaultsConfig{
			PageSize:              100,
			OutputFormat:          "json",
			RequestTimeoutSeconds: 30,
		},
		ProductCodes: make(map[string]ProductCodeConfig),
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 0,
			ShowProgress:      true,
		},
	}
}

// RequestTimeout returns the configured per-request timeout as a Duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Defaults.RequestTimeoutSeconds) * time.Second
}
