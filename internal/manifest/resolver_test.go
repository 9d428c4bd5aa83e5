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

package manifest

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	relaierrors "github.com/sirseerhq/nightly-probe/internal/errors"
	"github.com/sirseerhq/nightly-probe/test/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestResolve(t *testing.T) {
	body := testutil.NewManifestBuilder().
		WithVersion("1.80.0-nightly").
		WithCommitHash("deadbeef").
		WithDate("2024-06-01").
		Build()
	server := testutil.NewManifestServer(t, body)

	m, err := NewResolver(server.URL+"/dist/channel-rust-nightly.toml", WithLogger(quietLogger())).
		Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1.80.0-nightly", m.Version)
	assert.Equal(t, "deadbeef", m.CommitHash)
	assert.Equal(t, "2024-06-01", m.Date)
	assert.Equal(t, 1, server.RequestCount())
}

func TestResolve_UserAgent(t *testing.T) {
	var ua string
	server := testutil.NewMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		_, _ = io.WriteString(w, testutil.NewManifestBuilder().Build())
	})

	_, err := NewResolver(server.URL, WithUserAgent("nightly-probe/test"), WithLogger(quietLogger())).
		Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "nightly-probe/test", ua)
}

func TestResolve_FetchErrors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		server := testutil.NewErrorServer(t, http.StatusNotFound)

		_, err := NewResolver(server.URL, WithLogger(quietLogger())).Resolve(context.Background())
		assert.ErrorIs(t, err, relaierrors.ErrFetch)
		assert.Contains(t, err.Error(), "404")
		assert.Equal(t, 1, server.RequestCount(), "fetch failures are not retried")
	})

	t.Run("connection refused", func(t *testing.T) {
		server := testutil.NewErrorServer(t, http.StatusOK)
		url := server.URL
		server.Close()

		_, err := NewResolver(url, WithLogger(quietLogger())).Resolve(context.Background())
		assert.ErrorIs(t, err, relaierrors.ErrFetch)
	})

	t.Run("context deadline", func(t *testing.T) {
		server := testutil.NewMockServer(t, func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		})
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := NewResolver(server.URL, WithLogger(quietLogger())).Resolve(ctx)
		assert.ErrorIs(t, err, relaierrors.ErrFetch)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := NewResolver("://nope", WithLogger(quietLogger())).Resolve(context.Background())
		assert.ErrorIs(t, err, relaierrors.ErrFetch)
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		want        *BuildManifest
		wantErrText string
	}{
		{
			name: "full manifest",
			body: testutil.NewManifestBuilder().Build(),
			want: &BuildManifest{
				Version:    "1.87.0-nightly (4d91de4e4 2025-02-17)",
				CommitHash: "4d91de4e48198da2e33413efdcd9cd2cc0c46688",
				Date:       "2025-02-18",
			},
		},
		{
			name: "values are returned unmodified",
			body: "[pkg.rust]\nversion = \"  1.80.0-nightly  \"\ngit_commit_hash = \"DeadBeef\"\n",
			want: &BuildManifest{Version: "  1.80.0-nightly  ", CommitHash: "DeadBeef"},
		},
		{
			name: "no date",
			body: testutil.NewManifestBuilder().WithDate("").Build(),
			want: &BuildManifest{
				Version:    "1.87.0-nightly (4d91de4e4 2025-02-17)",
				CommitHash: "4d91de4e48198da2e33413efdcd9cd2cc0c46688",
			},
		},
		{
			name: "native toml date",
			body: "date = 2025-02-18\n[pkg.rust]\nversion = \"1.87.0-nightly\"\ngit_commit_hash = \"deadbeef\"\n",
			want: &BuildManifest{Version: "1.87.0-nightly", CommitHash: "deadbeef", Date: "2025-02-18"},
		},
		{
			name:        "not toml",
			body:        "<html>Service Unavailable</html>",
			wantErrText: "malformed document",
		},
		{
			name:        "pkg is not a table",
			body:        "pkg = \"rust\"\n",
			wantErrText: "malformed document",
		},
		{
			name:        "missing version",
			body:        testutil.NewManifestBuilder().WithoutVersion().Build(),
			wantErrText: "missing field version",
		},
		{
			name:        "missing git_commit_hash",
			body:        testutil.NewManifestBuilder().WithoutCommitHash().Build(),
			wantErrText: "missing field git_commit_hash",
		},
		{
			name:        "wrong-typed version",
			body:        "[pkg.rust]\nversion = 180\ngit_commit_hash = \"deadbeef\"\n",
			wantErrText: "missing field version",
		},
		{
			name:        "wrong-typed git_commit_hash",
			body:        "[pkg.rust]\nversion = \"1.80.0\"\ngit_commit_hash = [\"deadbeef\"]\n",
			wantErrText: "missing field git_commit_hash",
		},
		{
			name:        "no rust package",
			body:        "[pkg.cargo]\nversion = \"0.1\"\n",
			wantErrText: "missing field version",
		},
		{
			name:        "empty document",
			body:        "",
			wantErrText: "missing field version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.body))

			if tt.wantErrText != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, relaierrors.ErrParse)
				assert.Contains(t, err.Error(), tt.wantErrText)
				assert.NotContains(t, err.Error(), "%!w")
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildManifest_String(t *testing.T) {
	m := BuildManifest{Version: "1.80.0-nightly", CommitHash: "deadbeef"}
	assert.Equal(t, "1.80.0-nightly (deadbeef)", m.String())
}
