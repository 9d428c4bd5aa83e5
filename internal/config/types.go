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
// nightly-probe. These types represent settings that can be loaded from
// YAML configuration files, environment variables, or command-line flags.
package config

import (
	"time"

	"github.com/sirseerhq/nightly-probe/internal/github"
	"github.com/sirseerhq/nightly-probe/internal/manifest"
)

// Config represents the complete configuration for nightly-probe.
type Config struct {
	GitHub   GitHubConfig   `yaml:"github"`
	Manifest ManifestConfig `yaml:"manifest"`
	Search   SearchConfig   `yaml:"search"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// GitHubConfig contains GitHub-specific settings. Credentials themselves
// never live in the file, only the names of the environment variables that
// carry them.
type GitHubConfig struct {
	GraphQLEndpoint string `yaml:"graphql_endpoint"`
	Repository      string `yaml:"repository"`
	TokenEnv        string `yaml:"token_env"`
	UserEnv         string `yaml:"user_env"`
}

// ManifestConfig locates the release channel manifest.
type ManifestConfig struct {
	URL string `yaml:"url"`
}

// SearchConfig controls the history search.
type SearchConfig struct {
	StopOnExhausted bool `yaml:"stop_on_exhausted"`
}

// DefaultsConfig contains run settings that command-line flags may override.
type DefaultsConfig struct {
	OutputFormat string        `yaml:"output_format"`
	MetadataDir  string        `yaml:"metadata_dir"`
	Timeout      time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a Config that checks the public Rust nightly against
// rust-lang/rust on github.com.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			GraphQLEndpoint: github.DefaultGraphQLEndpoint,
			Repository:      github.DefaultRepository.String(),
			TokenEnv:        "USER_TOKEN",
			UserEnv:         "USER_NAME",
		},
		Manifest: ManifestConfig{
			URL: manifest.DefaultURL,
		},
		Defaults: DefaultsConfig{
			OutputFormat: "text",
			Timeout:      60 * time.Second,
		},
	}
}
