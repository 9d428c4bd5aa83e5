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

package github

import "context"

// HistoryClient fetches pages of commit history from GitHub.
// This interface allows for easy mocking in tests.
type HistoryClient interface {
	// FetchHistory retrieves one page of the ancestor history of root, a
	// commit expression such as a full object ID. Pagination continues from
	// opts.After.
	FetchHistory(ctx context.Context, root string, opts HistoryOptions) (*HistoryPage, error)
}
