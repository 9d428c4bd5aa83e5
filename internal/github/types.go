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

// Package github provides types and interfaces for reading commit history
// through the GitHub GraphQL API.
package github

import (
	"fmt"
	"strings"

	"emperror.dev/errors"
	relaierrors "github.com/sirseerhq/nightly-probe/internal/errors"
	"github.com/sirseerhq/nightly-probe/pkg/version"
)

// Repository identifies the GitHub repository whose history is searched.
type Repository struct {
	Owner string
	Name  string
}

// DefaultRepository is where Rust nightlies are built from.
var DefaultRepository = Repository{Owner: "rust-lang", Name: "rust"}

// ParseRepository parses an owner/name string into a Repository.
func ParseRepository(s string) (Repository, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return Repository{}, errors.Wrapf(relaierrors.ErrInvalidArgument,
			"invalid repository format, expected <owner>/<name>, got %q", s)
	}

	owner := strings.TrimSpace(parts[0])
	name := strings.TrimSpace(parts[1])
	if owner == "" || name == "" {
		return Repository{}, errors.Wrapf(relaierrors.ErrInvalidArgument,
			"invalid repository format, expected <owner>/<name>, got %q", s)
	}

	return Repository{Owner: owner, Name: name}, nil
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// Credentials are sent with every history query. Token becomes the bearer
// Authorization header and UserAgent identifies the client to GitHub.
type Credentials struct {
	Token     string
	UserAgent string
}

// String never includes the token so credentials are safe to log.
func (c Credentials) String() string {
	token := "<empty>"
	if c.Token != "" {
		token = "<redacted>"
	}
	return fmt.Sprintf("Credentials{UserAgent: %q, Token: %s}", c.userAgent(), token)
}

func (c Credentials) userAgent() string {
	if c.UserAgent == "" {
		return version.UserAgent()
	}
	return c.UserAgent
}

// HistoryPage is one page of a commit's ancestor history, most recent first
// as ordered by GitHub.
type HistoryPage struct {
	// Commits holds the full object IDs on this page. It may be empty.
	Commits []string

	// EndCursor resumes the listing after this page.
	EndCursor string

	// HasNextPage is false only when GitHub says the history is exhausted.
	HasNextPage bool
}

// HistoryOptions configures a single history page fetch.
type HistoryOptions struct {
	// PageSize is the number of history nodes requested. Defaults to
	// MaxPageSize; values above it are capped.
	PageSize int

	// After is the cursor to resume from. Empty starts at the root commit.
	After string
}

// MaxPageSize is GitHub's upper bound for connection page sizes.
const MaxPageSize = 100
