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

import (
	"context"
	"errors"
	"fmt"
	"testing"

	relaierrors "github.com/sirseerhq/nightly-probe/internal/errors"
)

// Compile-time check that MockClient implements HistoryClient
var _ HistoryClient = (*MockClient)(nil)

func TestMockClient_FetchHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("serves pages in order", func(t *testing.T) {
		pages := SequentialPages(2, 3)
		mock := NewMockClient(pages...)

		first, err := mock.FetchHistory(ctx, "root", HistoryOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := mock.FetchHistory(ctx, "root", HistoryOptions{After: first.EndCursor})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if first.EndCursor != "cursor-1" || second.EndCursor != "cursor-2" {
			t.Errorf("unexpected cursors %q, %q", first.EndCursor, second.EndCursor)
		}
		if len(second.Commits) != 3 {
			t.Errorf("expected 3 commits, got %d", len(second.Commits))
		}

		// Verify call tracking
		if mock.CallCount != 2 {
			t.Errorf("expected 2 calls, got %d", mock.CallCount)
		}
		if mock.LastRoot != "root" {
			t.Errorf("expected root 'root', got %q", mock.LastRoot)
		}
		if mock.Calls[1].After != "cursor-1" {
			t.Errorf("expected second call after cursor-1, got %q", mock.Calls[1].After)
		}
	})

	t.Run("exhausted history repeats the cursor", func(t *testing.T) {
		mock := NewMockClient()

		page, err := mock.FetchHistory(ctx, "root", HistoryOptions{After: "last"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(page.Commits) != 0 {
			t.Errorf("expected no commits, got %d", len(page.Commits))
		}
		if page.EndCursor != "last" {
			t.Errorf("expected cursor 'last', got %q", page.EndCursor)
		}
		if page.HasNextPage {
			t.Error("expected HasNextPage to be false")
		}
	})

	t.Run("returned pages are copies", func(t *testing.T) {
		mock := NewMockClient(HistoryPage{Commits: []string{"a"}, EndCursor: "c"})

		page, _ := mock.FetchHistory(ctx, "root", HistoryOptions{})
		page.Commits[0] = "changed"

		if mock.Pages[0].Commits[0] != "a" {
			t.Error("mutating a returned page changed the script")
		}
	})

	t.Run("simulates auth failure", func(t *testing.T) {
		mock := NewMockClientWithOptions(WithAuthFailure())

		_, err := mock.FetchHistory(ctx, "root", HistoryOptions{})
		if !errors.Is(err, relaierrors.ErrAuth) {
			t.Errorf("expected ErrAuth, got %v", err)
		}
	})

	t.Run("simulates network failure", func(t *testing.T) {
		mock := NewMockClient()
		mock.ShouldFailNetwork = true

		_, err := mock.FetchHistory(ctx, "root", HistoryOptions{})
		if !errors.Is(err, relaierrors.ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
	})

	t.Run("fails on a chosen call", func(t *testing.T) {
		boom := fmt.Errorf("boom: %w", relaierrors.ErrInvalidResponse)
		mock := NewMockClientWithOptions(WithPages(SequentialPages(3, 1)...), WithErrorOnCall(2, boom))

		if _, err := mock.FetchHistory(ctx, "root", HistoryOptions{}); err != nil {
			t.Fatalf("first call: unexpected error: %v", err)
		}
		if _, err := mock.FetchHistory(ctx, "root", HistoryOptions{}); !errors.Is(err, boom) {
			t.Errorf("second call: expected %v, got %v", boom, err)
		}
		if _, err := mock.FetchHistory(ctx, "root", HistoryOptions{}); err != nil {
			t.Errorf("third call: unexpected error: %v", err)
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockClientWithOptions(WithError(relaierrors.ErrRepoNotFound))

		_, err := mock.FetchHistory(ctx, "root", HistoryOptions{})
		if !errors.Is(err, relaierrors.ErrRepoNotFound) {
			t.Errorf("expected ErrRepoNotFound, got %v", err)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		mock := NewMockClient(SequentialPages(1, 1)...)
		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := mock.FetchHistory(cancelCtx, "root", HistoryOptions{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestSequentialPages(t *testing.T) {
	pages := SequentialPages(3, 100)

	seen := make(map[string]bool)
	for p, page := range pages {
		if len(page.Commits) != 100 {
			t.Errorf("page %d: expected 100 commits, got %d", p+1, len(page.Commits))
		}
		for _, c := range page.Commits {
			if len(c) != 40 {
				t.Errorf("commit %q is not 40 characters", c)
			}
			if seen[c] {
				t.Errorf("commit %q repeated", c)
			}
			seen[c] = true
		}
	}
}
