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

package giterror

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"emperror.dev/errors"
)

// Inspector provides methods to inspect and classify errors.
type Inspector interface {
	// IsAuthError returns true if the error represents rejected credentials.
	IsAuthError(err error) bool

	// IsNotFoundError returns true if the error represents a missing repository or object.
	IsNotFoundError(err error) bool

	// IsRateLimitError returns true if the error represents a rate limit error.
	IsRateLimitError(err error) bool

	// IsNetworkError returns true if the error represents a network connectivity
	// or HTTP-level failure.
	IsNetworkError(err error) bool
}

// StatusError is returned by the transport for any non-2xx HTTP response.
type StatusError struct {
	Code   int
	Status string
	Body   string
	Header http.Header
}

// maxErrorBody bounds how much of a response body is kept in a StatusError.
const maxErrorBody = 512

// NewStatusError builds a StatusError, truncating the body.
func NewStatusError(resp *http.Response, body []byte) *StatusError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &StatusError{
		Code:   resp.StatusCode,
		Status: resp.Status,
		Body:   strings.TrimSpace(string(body)),
		Header: resp.Header.Clone(),
	}
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected HTTP status %s", e.Status)
	}
	return fmt.Sprintf("unexpected HTTP status %s: %s", e.Status, e.Body)
}

// IsRateLimitError reports 429s and 403s that GitHub marks as rate limited.
func (e *StatusError) IsRateLimitError() bool {
	if e.Code == http.StatusTooManyRequests {
		return true
	}
	if e.Code != http.StatusForbidden {
		return false
	}
	if e.Header.Get("X-RateLimit-Remaining") == "0" || e.Header.Get("Retry-After") != "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Body), "rate limit")
}

// IsAuthError reports 401s and the 403s that are not rate limits.
func (e *StatusError) IsAuthError() bool {
	if e.Code == http.StatusUnauthorized {
		return true
	}
	return e.Code == http.StatusForbidden && !e.IsRateLimitError()
}

// IsNotFoundError reports 404s.
func (e *StatusError) IsNotFoundError() bool {
	return e.Code == http.StatusNotFound
}

// IsNetworkError reports every other status: the request did not produce a
// usable response.
func (e *StatusError) IsNetworkError() bool {
	return !e.IsAuthError() && !e.IsRateLimitError() && !e.IsNotFoundError()
}

// GitHubErrorInspector implements the Inspector interface for GitHub API errors
// by matching well-known fragments of their messages.
type GitHubErrorInspector struct{}

// NewInspector creates the default inspector: typed errors first, messages second.
func NewInspector() Inspector {
	return NewErrorChainInspector(&GitHubErrorInspector{})
}

// IsAuthError checks if the error is an authentication or authorization error.
func (i *GitHubErrorInspector) IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "bad credentials") ||
		strings.Contains(errStr, "authentication")
}

// IsNotFoundError checks if the error is a not found error.
func (i *GitHubErrorInspector) IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "could not resolve to a repository") ||
		strings.Contains(errStr, "404 not found")
}

// IsRateLimitError checks if the error is a rate limit error.
func (i *GitHubErrorInspector) IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate_limited")
}

// IsNetworkError checks if the error is a network connectivity error.
func (i *GitHubErrorInspector) IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "dial tcp") ||
		strings.Contains(errStr, "tls handshake") ||
		strings.Contains(errStr, "network is unreachable")
}

// ErrorChainInspector wraps a base inspector and adds support for checking errors
// in the error chain using errors.As. A typed answer found in the chain wins
// over the message-based fallback.
type ErrorChainInspector struct {
	base Inspector
}

// NewErrorChainInspector creates a new ErrorChainInspector that checks both
// the error chain and falls back to string-based inspection.
func NewErrorChainInspector(base Inspector) Inspector {
	return &ErrorChainInspector{base: base}
}

// IsAuthError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsAuthError(err error) bool {
	var authErr interface{ IsAuthError() bool }
	if errors.As(err, &authErr) {
		return authErr.IsAuthError()
	}
	if isTransportFailure(err) || isDecodeFailure(err) {
		return false
	}
	return e.base.IsAuthError(err)
}

// IsNotFoundError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsNotFoundError(err error) bool {
	var notFoundErr interface{ IsNotFoundError() bool }
	if errors.As(err, &notFoundErr) {
		return notFoundErr.IsNotFoundError()
	}
	if isTransportFailure(err) || isDecodeFailure(err) {
		return false
	}
	return e.base.IsNotFoundError(err)
}

// IsRateLimitError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsRateLimitError(err error) bool {
	var rateLimitErr interface{ IsRateLimitError() bool }
	if errors.As(err, &rateLimitErr) {
		return rateLimitErr.IsRateLimitError()
	}
	if isTransportFailure(err) || isDecodeFailure(err) {
		return false
	}
	return e.base.IsRateLimitError(err)
}

// IsNetworkError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsNetworkError(err error) bool {
	var networkErr interface{ IsNetworkError() bool }
	if errors.As(err, &networkErr) {
		return networkErr.IsNetworkError()
	}
	if isTransportFailure(err) {
		return true
	}
	if isDecodeFailure(err) {
		return false
	}
	return e.base.IsNetworkError(err)
}

// isTransportFailure reports errors raised before any response body was read.
func isTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// isDecodeFailure reports errors produced while decoding a response body.
func isDecodeFailure(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
