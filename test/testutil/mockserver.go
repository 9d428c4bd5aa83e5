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

// Package testutil provides common test helpers for nightly-probe
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
)

// MockServer provides common mock server configurations for testing
type MockServer struct {
	*httptest.Server
	requestCount int32
}

// RequestCount reports how many requests the server has received.
func (m *MockServer) RequestCount() int {
	return int(atomic.LoadInt32(&m.requestCount))
}

// NewMockServer creates a mock server that counts requests before handing
// them to handler. The server is closed when the test ends.
func NewMockServer(t *testing.T, handler http.HandlerFunc) *MockServer {
	t.Helper()
	m := &MockServer{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.requestCount, 1)
		handler(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

// NewRateLimitServer creates a mock server that rejects every request with 429
func NewRateLimitServer(t *testing.T, retryAfter int) *MockServer {
	t.Helper()
	return NewMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message": "API rate limit exceeded"}`))
	})
}

// NewErrorServer creates a mock server that always returns the specified error
func NewErrorServer(t *testing.T, statusCode int) *MockServer {
	t.Helper()
	return NewMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(http.StatusText(statusCode)))
	})
}

// NewManifestServer creates a mock server answering every GET with body as a
// TOML document.
func NewManifestServer(t *testing.T, body string) *MockServer {
	t.Helper()
	return NewMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/toml")
		_, _ = io.WriteString(w, body)
	})
}

// StatusResponse is a scripted non-JSON answer for ScriptedServer.
type StatusResponse struct {
	Code   int
	Body   string
	Header map[string]string
}

// GraphQLRequest is a decoded GraphQL request body.
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// RecordedRequest is one request seen by a ScriptedServer.
type RecordedRequest struct {
	Header http.Header
	Body   GraphQLRequest
}

// After returns the after variable of the request, or nil when it was null.
func (r RecordedRequest) After() interface{} {
	return r.Body.Variables["after"]
}

// ScriptedServer answers GraphQL requests with a fixed script of responses,
// one per request, and records what it was sent.
type ScriptedServer struct {
	*httptest.Server

	mu        sync.Mutex
	responses []interface{}
	requests  []RecordedRequest
}

// NewScriptedServer creates a ScriptedServer. Each response is either a value
// encoded as a 200 JSON body, or a StatusResponse. Requests beyond the end of
// the script fail the test.
func NewScriptedServer(t *testing.T, responses ...interface{}) *ScriptedServer {
	t.Helper()
	s := &ScriptedServer{responses: responses}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AssertGraphQLRequest(t, r)

		var body GraphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode GraphQL request: %v", err)
		}

		s.mu.Lock()
		n := len(s.requests)
		s.requests = append(s.requests, RecordedRequest{Header: r.Header.Clone(), Body: body})
		s.mu.Unlock()

		if n >= len(s.responses) {
			t.Errorf("Unexpected request %d, script has %d responses", n+1, len(s.responses))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		switch resp := s.responses[n].(type) {
		case StatusResponse:
			for k, v := range resp.Header {
				w.Header().Set(k, v)
			}
			w.WriteHeader(resp.Code)
			_, _ = io.WriteString(w, resp.Body)
		default:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

// Endpoint returns the GraphQL endpoint of the server.
func (s *ScriptedServer) Endpoint() string {
	return s.Server.URL + "/graphql"
}

// Requests returns a copy of the requests received so far.
func (s *ScriptedServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// RequestCount reports how many requests the server has received.
func (s *ScriptedServer) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// HistoryResponse builds a GraphQL history page response carrying only the
// fields the history query asks for.
func HistoryResponse(commits []string, endCursor string, hasNextPage bool) map[string]interface{} {
	nodes := make([]map[string]interface{}, 0, len(commits))
	for _, oid := range commits {
		nodes = append(nodes, map[string]interface{}{"oid": oid})
	}

	return HistoryData(map[string]interface{}{
		"nodes": nodes,
		"pageInfo": map[string]interface{}{
			"endCursor":   endCursor,
			"hasNextPage": hasNextPage,
		},
	})
}

// HistoryData wraps a raw history object in the repository/object envelope,
// for building malformed pages.
func HistoryData(history interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"repository": map[string]interface{}{
				"object": map[string]interface{}{
					"history": history,
				},
			},
		},
	}
}

// GraphQLErrorResponse builds a response that carries only a GraphQL error.
func GraphQLErrorResponse(errType, message string) map[string]interface{} {
	return map[string]interface{}{
		"data": nil,
		"errors": []interface{}{
			map[string]interface{}{
				"type":    errType,
				"message": message,
			},
		},
	}
}

// AssertGraphQLRequest validates a GraphQL request structure
func AssertGraphQLRequest(t *testing.T, r *http.Request) {
	t.Helper()
	if r.URL.Path != "/graphql" {
		t.Errorf("Unexpected path: %s", r.URL.Path)
	}
	if r.Method != "POST" {
		t.Errorf("Expected POST method, got: %s", r.Method)
	}
	if ct := r.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type: application/json, got: %s", ct)
	}
}
