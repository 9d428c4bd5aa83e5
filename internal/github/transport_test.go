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
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/sirseerhq/nightly-probe/internal/giterror"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(code int, body string, header http.Header) roundTripFunc {
	return func(req *http.Request) (*http.Response, error) {
		if header == nil {
			header = http.Header{}
		}
		return &http.Response{
			StatusCode: code,
			Status:     http.StatusText(code),
			Header:     header,
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    req,
		}, nil
	}
}

func TestIdentityTransport_SetsUserAgent(t *testing.T) {
	var seen string
	base := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		seen = req.Header.Get("User-Agent")
		return respond(http.StatusOK, "{}", nil)(req)
	})
	rt := &identityTransport{userAgent: "probe-test", base: base, limit: maxResponseSize}

	req, _ := http.NewRequest(http.MethodPost, "https://example.invalid/graphql", nil)
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if seen != "probe-test" {
		t.Errorf("expected User-Agent probe-test, got %q", seen)
	}
	if req.Header.Get("User-Agent") != "" {
		t.Error("original request was modified")
	}
}

func TestIdentityTransport_StatusError(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "30")
	rt := &identityTransport{
		userAgent: "probe-test",
		base:      respond(http.StatusForbidden, `{"message":"slow down"}`, header),
		limit:     maxResponseSize,
	}

	req, _ := http.NewRequest(http.MethodPost, "https://example.invalid/graphql", nil)
	resp, err := rt.RoundTrip(req)
	if resp != nil {
		t.Error("expected no response for a non-2xx status")
	}

	var statusErr *giterror.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *giterror.StatusError, got %T: %v", err, err)
	}
	if statusErr.Code != http.StatusForbidden {
		t.Errorf("expected code 403, got %d", statusErr.Code)
	}
	if !statusErr.IsRateLimitError() {
		t.Error("expected a 403 with Retry-After to be a rate limit")
	}
}

func TestLimitedReader(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		limit   int64
		wantErr bool
	}{
		{name: "within limit", data: "hello", limit: 10},
		{name: "exactly at limit", data: "hello", limit: 5, wantErr: true},
		{name: "over limit", data: "hello world", limit: 5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := &limitedReader{
				ReadCloser: io.NopCloser(strings.NewReader(tt.data)),
				limit:      tt.limit,
			}

			_, err := io.ReadAll(lr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ReadAll() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCredentials_String(t *testing.T) {
	creds := Credentials{Token: "ghp_secret", UserAgent: "someone"}

	if s := creds.String(); strings.Contains(s, "ghp_secret") {
		t.Errorf("token leaked into %q", s)
	}
	if s := (Credentials{}).String(); !strings.Contains(s, "<empty>") {
		t.Errorf("expected empty token marker, got %q", s)
	}
}

func TestParseRepository(t *testing.T) {
	tests := []struct {
		input   string
		want    Repository
		wantErr bool
	}{
		{input: "rust-lang/rust", want: Repository{Owner: "rust-lang", Name: "rust"}},
		{input: " octocat / hello ", want: Repository{Owner: "octocat", Name: "hello"}},
		{input: "rust", wantErr: true},
		{input: "a/b/c", wantErr: true},
		{input: "/rust", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRepository(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRepository(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRepository(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
