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
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// HistoryService simulates GitHub's commit history pagination over a fixed,
// linear list of commits. Cursors encode the offset of the next commit.
type HistoryService struct {
	*httptest.Server

	mu       sync.Mutex
	commits  []string
	requests []GraphQLRequest
	failOn   map[int]int
}

// NewHistoryService creates a service whose history, newest first, is commits.
func NewHistoryService(t *testing.T, commits []string) *HistoryService {
	t.Helper()
	h := &HistoryService{
		commits: commits,
		failOn:  make(map[int]int),
	}
	h.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AssertGraphQLRequest(t, r)

		var req GraphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		h.mu.Lock()
		h.requests = append(h.requests, req)
		status, fail := h.failOn[len(h.requests)]
		h.mu.Unlock()

		if fail {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(http.StatusText(status)))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(h.page(req.Variables))
	}))
	t.Cleanup(h.Close)
	return h
}

// FailOn makes the given 1-indexed request fail with status.
func (h *HistoryService) FailOn(request, status int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failOn[request] = status
}

// Endpoint returns the GraphQL endpoint of the service.
func (h *HistoryService) Endpoint() string {
	return h.URL + "/graphql"
}

// Requests returns a copy of the requests received so far.
func (h *HistoryService) Requests() []GraphQLRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]GraphQLRequest(nil), h.requests...)
}

func (h *HistoryService) page(vars map[string]interface{}) map[string]interface{} {
	first := 100
	if f, ok := vars["first"].(float64); ok && f > 0 {
		first = int(f)
	}

	offset := 0
	cursor := ""
	if after, ok := vars["after"].(string); ok {
		cursor = after
		offset = decodeCursor(after)
	}

	end := offset + first
	if end > len(h.commits) {
		end = len(h.commits)
	}
	if offset > end {
		offset = end
	}

	if end > offset {
		cursor = HistoryCursor(end)
	}
	return HistoryResponse(h.commits[offset:end], cursor, end < len(h.commits))
}

// HistoryCursor returns the cursor HistoryService hands out after offset
// commits have been listed.
func HistoryCursor(offset int) string {
	return fmt.Sprintf("history:%d", offset)
}

func decodeCursor(cursor string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(cursor, "history:"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// LinearHistory returns n distinct 40-character commit IDs.
func LinearHistory(n int) []string {
	commits := make([]string, 0, n)
	for i := 0; i < n; i++ {
		commits = append(commits, fmt.Sprintf("%040x", i+1))
	}
	return commits
}
