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
	"fmt"

	relaierrors "github.com/sirseerhq/nightly-probe/internal/errors"
)

// MockClient is a mock implementation of the HistoryClient interface for testing.
// Pages are served in order, one per call. Once they run out, the client
// keeps answering with an empty page that repeats the last cursor, the way an
// exhausted history behaves on GitHub.
type MockClient struct {
	// Pages to return, in call order
	Pages []HistoryPage

	// Error to return on every call
	Error error

	// ErrorOnCall returns an error on the given 1-indexed call
	ErrorOnCall map[int]error

	// Behavior flags
	ShouldFailAuth    bool
	ShouldFailNetwork bool

	// Track calls for verification
	CallCount int
	LastRoot  string
	Calls     []HistoryOptions
}

// NewMockClient creates a new mock client serving the given pages.
func NewMockClient(pages ...HistoryPage) *MockClient {
	return &MockClient{
		Pages:       pages,
		ErrorOnCall: make(map[int]error),
	}
}

// FetchHistory implements the HistoryClient interface
func (m *MockClient) FetchHistory(ctx context.Context, root string, opts HistoryOptions) (*HistoryPage, error) {
	m.CallCount++
	m.LastRoot = root
	m.Calls = append(m.Calls, opts)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if m.ShouldFailAuth {
		return nil, fmt.Errorf("authentication failed: %w", relaierrors.ErrAuth)
	}

	if m.ShouldFailNetwork {
		return nil, fmt.Errorf("network timeout: %w", relaierrors.ErrTransport)
	}

	if err, ok := m.ErrorOnCall[m.CallCount]; ok {
		return nil, err
	}

	if m.Error != nil {
		return nil, m.Error
	}

	if m.CallCount <= len(m.Pages) {
		page := m.Pages[m.CallCount-1]
		page.Commits = append([]string(nil), page.Commits...)
		return &page, nil
	}

	return &HistoryPage{
		Commits:     []string{},
		EndCursor:   opts.After,
		HasNextPage: false,
	}, nil
}

// MockClientOption allows configuring the mock client
type MockClientOption func(*MockClient)

// WithPages sets the pages to return
func WithPages(pages ...HistoryPage) MockClientOption {
	return func(m *MockClient) {
		m.Pages = pages
	}
}

// WithError makes the client return a specific error
func WithError(err error) MockClientOption {
	return func(m *MockClient) {
		m.Error = err
	}
}

// WithErrorOnCall makes the given 1-indexed call fail with err
func WithErrorOnCall(call int, err error) MockClientOption {
	return func(m *MockClient) {
		m.ErrorOnCall[call] = err
	}
}

// WithAuthFailure makes the client simulate authentication failure
func WithAuthFailure() MockClientOption {
	return func(m *MockClient) {
		m.ShouldFailAuth = true
	}
}

// NewMockClientWithOptions creates a mock client with options
func NewMockClientWithOptions(opts ...MockClientOption) *MockClient {
	mock := NewMockClient()
	for _, opt := range opts {
		opt(mock)
	}
	return mock
}

// SequentialPages builds n pages of size commits each, with cursors
// "cursor-1".."cursor-n" and commit IDs derived from the page and position.
func SequentialPages(n, size int) []HistoryPage {
	pages := make([]HistoryPage, 0, n)
	for p := 1; p <= n; p++ {
		commits := make([]string, 0, size)
		for i := 0; i < size; i++ {
			commits = append(commits, fmt.Sprintf("%038x%02x", p, i))
		}
		pages = append(pages, HistoryPage{
			Commits:     commits,
			EndCursor:   fmt.Sprintf("cursor-%d", p),
			HasNextPage: true,
		})
	}
	return pages
}
