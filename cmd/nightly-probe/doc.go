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

// Package main implements the nightly-probe command-line interface.
// It reports which commit the current Rust nightly was built from and,
// given a commit, whether that commit is already part of the nightly.
//
// The CLI supports:
//   - Printing the nightly version and commit hash (no argument)
//   - Searching the last 500 commits of the nightly's history for a commit
//   - Text or NDJSON output (--format)
//   - Optional JSON run reports (--metadata-dir)
//   - Credentials from flags, the environment, or a .env file
//
// Usage:
//
//	nightly-probe [commit] [flags]
//
// Example:
//
//	export USER_TOKEN=your_token
//	nightly-probe 1b0bc594a75e8e9a4f0bdbd4bd6fd7e4dd2a0c1f
//
// Exit codes:
//   - 0: Success, including "not found"
//   - 1: General error
//   - 2: GitHub rejected the request (credentials, rate limit, repository)
//   - 3: Network error
//   - 4: Unusable manifest or history response
package main
