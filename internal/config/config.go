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

// Package config provides configuration management for nightly-probe with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file
//  4. Built-in defaults
//
// A .env file in the working directory is read into the environment before
// anything else, without replacing variables that are already set.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"emperror.dev/errors"
	relaierrors "github.com/sirseerhq/nightly-probe/internal/errors"
	"github.com/sirseerhq/nightly-probe/internal/github"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

// FallbackTokenEnv is consulted when the configured token variable is unset.
const FallbackTokenEnv = "GITHUB_TOKEN"

// LoadEnvFile loads variables from a dotenv file into the process
// environment. Variables that are already set keep their value, and a missing
// file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return errors.Wrapf(err, "failed to load env file %s", path)
	}
	return nil
}

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .nightly-probe.yaml (current directory)
//   - .nightly-probe.yml (current directory)
//   - ~/.nightly-probe/config.yaml
//   - ~/.nightly-probe/config.yml
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, errors.WithMessage(err, "failed to load config file")
		}
	} else {
		defaultPaths := []string{
			".nightly-probe.yaml",
			".nightly-probe.yml",
			filepath.Join(os.Getenv("HOME"), ".nightly-probe", "config.yaml"),
			filepath.Join(os.Getenv("HOME"), ".nightly-probe", "config.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, errors.WithMessagef(err, "failed to load config from %s", path)
				}
				break
			}
		}
	}

	applyEnvOverrides(cfg)

	cfg.Defaults.MetadataDir = expandPath(cfg.Defaults.MetadataDir)

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if endpoint := os.Getenv("GITHUB_GRAPHQL_ENDPOINT"); endpoint != "" {
		cfg.GitHub.GraphQLEndpoint = endpoint
	}
	if repo := os.Getenv("NIGHTLY_PROBE_REPOSITORY"); repo != "" {
		cfg.GitHub.Repository = repo
	}
	if url := os.Getenv("NIGHTLY_PROBE_MANIFEST_URL"); url != "" {
		cfg.Manifest.URL = url
	}
	if stop := os.Getenv("NIGHTLY_PROBE_STOP_ON_EXHAUSTED"); stop != "" {
		cfg.Search.StopOnExhausted = parseBool(stop)
	}
	if format := os.Getenv("NIGHTLY_PROBE_FORMAT"); format != "" {
		cfg.Defaults.OutputFormat = format
	}
	if dir := os.Getenv("NIGHTLY_PROBE_METADATA_DIR"); dir != "" {
		cfg.Defaults.MetadataDir = dir
	}
	if timeout := os.Getenv("NIGHTLY_PROBE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Defaults.Timeout = d
		}
	}
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

// Credentials assembles GitHub credentials. Explicit values win; otherwise
// the token comes from the configured token variable, then GITHUB_TOKEN, and
// the identity from the configured user variable.
func (c *Config) Credentials(token, user string) github.Credentials {
	if token == "" {
		token = os.Getenv(c.GitHub.TokenEnv)
	}
	if token == "" {
		token = os.Getenv(FallbackTokenEnv)
	}
	if user == "" && c.GitHub.UserEnv != "" {
		user = os.Getenv(c.GitHub.UserEnv)
	}
	return github.Credentials{Token: token, UserAgent: user}
}

// Repository returns the configured repository.
func (c *Config) Repository() (github.Repository, error) {
	return github.ParseRepository(c.GitHub.Repository)
}

// Validate checks if the configuration contains valid values. Call it after
// flags have been applied so that bad overrides are caught too.
func (c *Config) Validate() error {
	if c.GitHub.GraphQLEndpoint == "" {
		return errors.Wrap(relaierrors.ErrInvalidArgument, "GitHub GraphQL endpoint cannot be empty")
	}
	if c.Manifest.URL == "" {
		return errors.Wrap(relaierrors.ErrInvalidArgument, "manifest URL cannot be empty")
	}
	if _, err := c.Repository(); err != nil {
		return err
	}
	if c.GitHub.TokenEnv == "" {
		return errors.Wrap(relaierrors.ErrInvalidArgument, "token_env cannot be empty")
	}
	switch c.Defaults.OutputFormat {
	case "text", "json":
	default:
		return errors.Wrapf(relaierrors.ErrInvalidArgument, "unknown output format %q, expected text or json", c.Defaults.OutputFormat)
	}
	if c.Defaults.Timeout <= 0 {
		return errors.Wrapf(relaierrors.ErrInvalidArgument, "timeout must be positive, got: %s", c.Defaults.Timeout)
	}
	return nil
}
