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
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/sirseerhq/nightly-probe/internal/giterror"
	"golang.org/x/oauth2"
)

// maxResponseSize caps the body of any GitHub response (10MB).
const maxResponseSize = 10 * 1024 * 1024

// newHTTPClient layers bearer auth over identityTransport over base.
// A nil base uses a pooled transport.
func newHTTPClient(creds Credentials, base http.RoundTripper) *http.Client {
	if base == nil {
		base = cleanhttp.DefaultPooledTransport()
	}

	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.Token}),
			Base: &identityTransport{
				userAgent: creds.userAgent(),
				base:      base,
				limit:     maxResponseSize,
			},
		},
	}
}

// identityTransport adds the User-Agent header and safety limits to HTTP requests.
// Non-2xx responses are turned into *giterror.StatusError so callers can
// classify them without parsing messages.
type identityTransport struct {
	userAgent string
	base      http.RoundTripper
	limit     int64
}

// RoundTrip implements http.RoundTripper
func (t *identityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, giterror.NewStatusError(resp, body)
	}

	if resp.Body != nil {
		resp.Body = &limitedReader{
			ReadCloser: resp.Body,
			limit:      t.limit,
		}
	}

	return resp, nil
}

// limitedReader wraps a ReadCloser with a size limit to prevent excessive memory usage.
type limitedReader struct {
	io.ReadCloser
	limit int64
	read  int64
}

// Read implements io.Reader with size limit enforcement.
func (lr *limitedReader) Read(p []byte) (n int, err error) {
	if lr.read >= lr.limit {
		return 0, fmt.Errorf("response size exceeded limit of %d bytes", lr.limit)
	}

	remaining := lr.limit - lr.read
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err = lr.ReadCloser.Read(p)
	lr.read += int64(n)

	return n, err
}
