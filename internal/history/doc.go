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

// Package history decides whether a commit is part of the history of another
// commit by listing that history from GitHub one page at a time.
//
// A search is bounded: it fetches at most MaxAttempts pages of PageSize
// commits each, strictly in order, and stops at the first page that contains
// the target. A target that only appears further back is reported as
// NotFound.
//
// Example usage:
//
//	searcher, err := history.New(history.Config{
//		Repository:  github.DefaultRepository,
//		Credentials: github.Credentials{Token: token, UserAgent: user},
//	})
//	if err != nil {
//		return err
//	}
//
//	result, err := searcher.Search(ctx, nightlyHash, commit)
//	if err != nil {
//		return err
//	}
//	if result.Outcome == history.Found {
//		fmt.Println("nightly contains", commit)
//	}
//
// Every failure aborts the search at once. The returned error matches one of
// the sentinels in internal/errors (ErrTransport, ErrInvalidResponse,
// ErrAuth, ErrRateLimit, ErrRepoNotFound) with errors.Is.
package history
