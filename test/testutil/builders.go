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

package testutil

import (
	"fmt"
	"strings"
)

// ManifestBuilder provides a fluent API for creating test release manifests
type ManifestBuilder struct {
	date        string
	version     string
	commitHash  string
	omitVersion bool
	omitHash    bool
	targets     []string
}

// NewManifestBuilder creates a manifest builder with realistic defaults
func NewManifestBuilder() *ManifestBuilder {
	return &ManifestBuilder{
		date:       "2025-02-18",
		version:    "1.87.0-nightly (4d91de4e4 2025-02-17)",
		commitHash: "4d91de4e48198da2e33413efdcd9cd2cc0c46688",
		targets:    []string{"x86_64-unknown-linux-gnu", "aarch64-apple-darwin"},
	}
}

// WithDate sets the top-level manifest date
func (b *ManifestBuilder) WithDate(date string) *ManifestBuilder {
	b.date = date
	return b
}

// WithVersion sets pkg.rust.version
func (b *ManifestBuilder) WithVersion(version string) *ManifestBuilder {
	b.version = version
	b.omitVersion = false
	return b
}

// WithCommitHash sets pkg.rust.git_commit_hash
func (b *ManifestBuilder) WithCommitHash(hash string) *ManifestBuilder {
	b.commitHash = hash
	b.omitHash = false
	return b
}

// WithoutVersion drops pkg.rust.version from the document
func (b *ManifestBuilder) WithoutVersion() *ManifestBuilder {
	b.omitVersion = true
	return b
}

// WithoutCommitHash drops pkg.rust.git_commit_hash from the document
func (b *ManifestBuilder) WithoutCommitHash() *ManifestBuilder {
	b.omitHash = true
	return b
}

// Build renders the manifest as TOML. Besides pkg.rust it carries a sibling
// package and per-target tables, the way the published manifest does.
func (b *ManifestBuilder) Build() string {
	var sb strings.Builder

	sb.WriteString("manifest-version = \"2\"\n")
	if b.date != "" {
		fmt.Fprintf(&sb, "date = %q\n", b.date)
	}

	sb.WriteString("\n[pkg.cargo]\n")
	sb.WriteString("version = \"0.88.0-nightly (ce948f461 2025-02-14)\"\n")
	sb.WriteString("git_commit_hash = \"ce948f4616e3d4277e30c75c8bb01e094910df39\"\n")

	sb.WriteString("\n[pkg.rust]\n")
	if !b.omitVersion {
		fmt.Fprintf(&sb, "version = %q\n", b.version)
	}
	if !b.omitHash {
		fmt.Fprintf(&sb, "git_commit_hash = %q\n", b.commitHash)
	}

	for _, target := range b.targets {
		fmt.Fprintf(&sb, "\n[pkg.rust.target.%s]\n", target)
		sb.WriteString("available = true\n")
		fmt.Fprintf(&sb, "url = \"https://static.rust-lang.org/dist/%s/rust-nightly-%s.tar.gz\"\n", b.date, target)
		sb.WriteString("hash = \"0000000000000000000000000000000000000000000000000000000000000000\"\n")
	}

	return sb.String()
}
