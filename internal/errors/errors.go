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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import "emperror.dev/errors"

// Sentinel errors for consistent error handling and exit code mapping.
// Callers wrap them with stage context; errors.Is recovers the kind.
var (
	// ErrFetch indicates the build manifest could not be downloaded.
	// Maps to exit code 3.
	ErrFetch = errors.NewPlain("manifest fetch failed")

	// ErrParse indicates the build manifest is malformed or lacks a required field.
	// Maps to exit code 4.
	ErrParse = errors.NewPlain("manifest parse failed")

	// ErrTransport indicates a network or HTTP failure while querying history.
	// Maps to exit code 3.
	ErrTransport = errors.NewPlain("history query transport failed")

	// ErrInvalidResponse indicates a history response without the expected structure.
	// Maps to exit code 4.
	ErrInvalidResponse = errors.NewPlain("invalid history response")

	// ErrAuth indicates GitHub rejected the supplied credentials.
	// Maps to exit code 2.
	ErrAuth = errors.NewPlain("github credentials rejected")

	// ErrRateLimit indicates GitHub API rate limit has been exceeded.
	// Maps to exit code 2.
	ErrRateLimit = errors.NewPlain("github rate limit exceeded")

	// ErrRepoNotFound indicates the configured repository does not exist or is not accessible.
	// Maps to exit code 2.
	ErrRepoNotFound = errors.NewPlain("repository not found")

	// ErrInvalidArgument indicates a caller supplied an empty or malformed input.
	// Maps to exit code 1.
	ErrInvalidArgument = errors.NewPlain("invalid argument")
)
