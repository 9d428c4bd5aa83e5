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

// Package manifest resolves which source commit the current Rust nightly was
// built from, by reading the published release channel manifest.
package manifest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"emperror.dev/errors"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/pelletier/go-toml/v2"
	relaierrors "github.com/sirseerhq/nightly-probe/internal/errors"
	"github.com/sirupsen/logrus"
)

// DefaultURL is the manifest of the nightly release channel.
const DefaultURL = "https://static.rust-lang.org/dist/channel-rust-nightly.toml"

// maxManifestSize caps the manifest body (10MB). The published file is a few
// hundred kilobytes.
const maxManifestSize = 10 * 1024 * 1024

// BuildManifest identifies a published nightly build.
type BuildManifest struct {
	// Version is pkg.rust.version, e.g. "1.87.0-nightly (4d91de4e4 2025-02-17)".
	Version string `json:"version"`

	// CommitHash is pkg.rust.git_commit_hash, the commit the build came from.
	CommitHash string `json:"hash"`

	// Date is the manifest's top-level publication date, empty when absent.
	Date string `json:"date,omitempty"`
}

// Resolver fetches and parses the release manifest.
type Resolver struct {
	url       string
	client    *http.Client
	userAgent string
	log       logrus.FieldLogger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient replaces the pooled HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithUserAgent sets the User-Agent header sent with the request.
func WithUserAgent(ua string) Option {
	return func(r *Resolver) {
		r.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Resolver) {
		r.log = log
	}
}

// NewResolver creates a Resolver for the manifest at url. An empty url uses
// DefaultURL.
func NewResolver(url string, opts ...Option) *Resolver {
	if url == "" {
		url = DefaultURL
	}
	r := &Resolver{
		url:    url,
		client: cleanhttp.DefaultPooledClient(),
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve downloads the manifest and extracts the nightly version and commit
// hash. Failures wrap ErrFetch or ErrParse and are never retried.
func (r *Resolver) Resolve(ctx context.Context) (*BuildManifest, error) {
	body, err := r.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(body)
}

func (r *Resolver) fetch(ctx context.Context) (_ []byte, reterr error) {
	log := r.log.WithField("url", r.url)
	log.Debug("fetching release manifest...")
	startTime := time.Now()
	defer func() {
		log := log.WithField("elapsed", time.Since(startTime))
		if reterr != nil {
			log.WithError(reterr).Debug("release manifest fetch failed")
		} else {
			log.Debug("release manifest fetched")
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, errors.WithStack(fmt.Errorf("invalid manifest URL %q: %w: %w", r.url, relaierrors.ErrFetch, err))
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.WithStack(fmt.Errorf("could not download %s: %w: %w", r.url, relaierrors.ErrFetch, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(relaierrors.ErrFetch, "unexpected HTTP status %s from %s", resp.Status, r.url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestSize+1))
	if err != nil {
		return nil, errors.WithStack(fmt.Errorf("could not read %s: %w: %w", r.url, relaierrors.ErrFetch, err))
	}
	if len(body) > maxManifestSize {
		return nil, errors.Wrapf(relaierrors.ErrFetch, "manifest exceeds %d bytes", maxManifestSize)
	}
	return body, nil
}

// document holds the part of the manifest that is read. Leaves are untyped so
// a wrong-typed field is reported as missing rather than as a malformed file.
type document struct {
	Date any `toml:"date"`
	Pkg  *struct {
		Rust *struct {
			Version       any `toml:"version"`
			GitCommitHash any `toml:"git_commit_hash"`
		} `toml:"rust"`
	} `toml:"pkg"`
}

// Parse extracts a BuildManifest from a manifest document.
func Parse(data []byte) (*BuildManifest, error) {
	var doc document
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, errors.WithStack(fmt.Errorf("malformed document: %w: %w", relaierrors.ErrParse, err))
	}

	var version, hash any
	if doc.Pkg != nil && doc.Pkg.Rust != nil {
		version = doc.Pkg.Rust.Version
		hash = doc.Pkg.Rust.GitCommitHash
	}

	m := &BuildManifest{}
	var ok bool
	if m.Version, ok = version.(string); !ok {
		return nil, errors.Wrap(relaierrors.ErrParse, "missing field version")
	}
	if m.CommitHash, ok = hash.(string); !ok {
		return nil, errors.Wrap(relaierrors.ErrParse, "missing field git_commit_hash")
	}
	switch date := doc.Date.(type) {
	case string:
		m.Date = date
	case toml.LocalDate:
		m.Date = date.String()
	}

	return m, nil
}

func (m BuildManifest) String() string {
	return fmt.Sprintf("%s (%s)", m.Version, m.CommitHash)
}
