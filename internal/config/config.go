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

// Package config provides configuration management for fda-relay with
// support for multiple configuration sources and a well-defined precedence
// order. It enables shared deployments to customize behavior through
// configuration files while maintaining flexibility with environment
// variables and command-line overrides.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Product-code-specific configuration
//  3. Environment variables
//  4. Configuration file
//  5. Built-in defaults
//
// The package supports YAML configuration files and provides automatic
// discovery of configuration in the working directory and the XDG config
// directory, so one config can serve every invocation on a machine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/sirseerhq/fda-relay/internal/output"
)

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .fda-relay.yaml (current directory)
//   - .fda-relay.yml (current directory)
//   - $XDG_CONFIG_HOME/fda-relay/config.yaml
//   - ~/.fda-relay.yaml
//
// Environment variables are applied after loading the config file, allowing
// runtime overrides.
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Try to load config file if path is provided
	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else if path := findConfigFile(defaultConfigPaths()); path != "" {
		if err := loadConfigFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadConfigForProduct loads configuration and applies product-code-specific
// overrides. This allows different settings for different product codes,
// useful when some codes require special handling (e.g., smaller pages for
// codes whose records carry long summary texts).
func LoadConfigForProduct(configPath, productCode string) (*Config, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	// Apply product-specific overrides if they exist
	if codeConfig, ok := cfg.ProductCodes[productCode]; ok {
		if codeConfig.PageSize > 0 {
			cfg.Defaults.PageSize = codeConfig.PageSize
		}
	}

	return cfg, nil
}

// defaultConfigPaths returns the standard config locations in search order.
func defaultConfigPaths() []string {
	return []string{
		".fda-relay.yaml",
		".fda-relay.yml",
		filepath.Join(xdg.ConfigHome, "fda-relay", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".fda-relay.yaml"),
	}
}

// findConfigFile returns the first existing path from candidates, or the
// empty string if none exist.
func findConfigFile(candidates []string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	// openFDA endpoint
	if endpoint := os.Getenv("FDA_API_ENDPOINT"); endpoint != "" {
		cfg.FDA.APIEndpoint = endpoint
	}

	// Defaults
	if pageSize := os.Getenv("SIRSEER_PAGE_SIZE"); pageSize != "" {
		if size, err := parsePositiveInt(pageSize); err == nil {
			cfg.Defaults.PageSize = size
		}
	}

	// Rate limit settings
	if rpm := os.Getenv("SIRSEER_RATE_LIMIT_RPM"); rpm != "" {
		if n, err := parsePositiveInt(rpm); err == nil {
			cfg.RateLimit.RequestsPerMinute = n
		}
	}
	if showProgress := os.Getenv("SIRSEER_SHOW_PROGRESS"); showProgress != "" {
		cfg.RateLimit.ShowProgress = parseBool(showProgress)
	}
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

// GetPageSize returns the effective page size for a product code, taking
// into account product-specific overrides. If the code has a specific page
// size configured, it returns that value. Otherwise, it returns the
// default page size.
func (c *Config) GetPageSize(productCode string) int {
	if codeConfig, ok := c.ProductCodes[productCode]; ok && codeConfig.PageSize > 0 {
		return codeConfig.PageSize
	}
	return c.Defaults.PageSize
}

// Validate checks if the configuration contains valid values. It ensures
// page sizes are within openFDA's limits, the endpoint is not empty, and
// other constraints are met. This should be called after loading
// configuration to catch invalid settings early.
func (c *Config) Validate() error {
	if c.Defaults.PageSize <= 0 {
		return fmt.Errorf("default page size must be positive, got: %d", c.Defaults.PageSize)
	}
	if c.Defaults.PageSize > 100 {
		return fmt.Errorf("default page size %d exceeds openFDA API limit of 100", c.Defaults.PageSize)
	}
	if !output.ValidFormat(c.Defaults.OutputFormat) {
		return fmt.Errorf("unknown output format %q (supported: json, ndjson)", c.Defaults.OutputFormat)
	}
	if c.Defaults.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request timeout must be positive, got: %d", c.Defaults.RequestTimeoutSeconds)
	}
	if c.FDA.APIEndpoint == "" {
		return fmt.Errorf("openFDA API endpoint cannot be empty")
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("requests per minute cannot be negative, got: %d", c.RateLimit.RequestsPerMinute)
	}
	return nil
}
