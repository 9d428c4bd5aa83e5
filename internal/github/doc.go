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

// Package github provides a client for reading commit history from GitHub's
// GraphQL API. The query shape is fixed and expressed as Go structs, so a
// malformed query is a compile error rather than a rendering failure.
//
// The package includes:
//   - A HistoryClient interface for fetching history pages
//   - A GraphQL implementation using the shurcooL/graphql and githubv4 libraries
//   - Transport that adds bearer auth, a User-Agent and a response size limit
//   - Mock client for testing
//
// Basic usage:
//
//	client := github.NewGraphQLClient(
//	    "https://api.github.com/graphql",
//	    github.DefaultRepository,
//	    github.Credentials{Token: token, UserAgent: "me"},
//	)
//	page, err := client.FetchHistory(ctx, "deadbeef", github.HistoryOptions{})
//	if err != nil {
//	    // Handle error
//	}
//	for _, oid := range page.Commits {
//	    // Inspect commit
//	}
package github
