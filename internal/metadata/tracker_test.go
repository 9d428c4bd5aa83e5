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

package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirseerhq/nightly-probe/internal/github"
	"github.com/sirseerhq/nightly-probe/test/testutil"
)

var testParams = RunParams{
	Repository:  "rust-lang/rust",
	ManifestURL: "https://static.rust-lang.org/dist/channel-rust-nightly.toml",
	Commit:      "cafefeed",
	MaxAttempts: 5,
	PageSize:    100,
}

func TestTracker_RecordPage(t *testing.T) {
	tracker := New()
	tracker.IncrementAPICall()

	pages := github.SequentialPages(3, 100)
	for i := range pages {
		tracker.RecordPage(i+1, &pages[i])
	}

	if tracker.PagesFetched() != 3 {
		t.Errorf("PagesFetched = %d, want 3", tracker.PagesFetched())
	}
	if tracker.commitsScanned != 300 {
		t.Errorf("commitsScanned = %d, want 300", tracker.commitsScanned)
	}
	if tracker.apiCallCount != 4 {
		t.Errorf("apiCallCount = %d, want 4", tracker.apiCallCount)
	}
	if tracker.lastCursor != "cursor-3" {
		t.Errorf("lastCursor = %q, want cursor-3", tracker.lastCursor)
	}
}

func TestTracker_GenerateMetadata(t *testing.T) {
	tracker := New()
	tracker.startTime = time.Now().Add(-2 * time.Second)
	tracker.IncrementAPICall()
	tracker.RecordManifest("1.80.0-nightly", "deadbeef")
	tracker.RecordPage(1, &github.HistoryPage{Commits: []string{"a", "b"}, EndCursor: "c1"})

	md := tracker.GenerateMetadata("1.0.0", testParams, OutcomeFound, nil)

	if md.ProbeVersion != "1.0.0" {
		t.Errorf("ProbeVersion = %s, want 1.0.0", md.ProbeVersion)
	}
	if md.MethodVersion != MethodVersion {
		t.Errorf("MethodVersion = %s, want %s", md.MethodVersion, MethodVersion)
	}
	if !strings.HasPrefix(md.RunID, "search-") {
		t.Errorf("RunID = %s, want search- prefix", md.RunID)
	}
	if md.Parameters != testParams {
		t.Errorf("Parameters = %+v, want %+v", md.Parameters, testParams)
	}

	r := md.Results
	if r.NightlyVersion != "1.80.0-nightly" || r.NightlyHash != "deadbeef" {
		t.Errorf("nightly = %s/%s", r.NightlyVersion, r.NightlyHash)
	}
	if r.Outcome != OutcomeFound || r.Error != "" {
		t.Errorf("Outcome = %q, Error = %q", r.Outcome, r.Error)
	}
	if r.PagesFetched != 1 || r.CommitsScanned != 2 || r.APICallCount != 2 {
		t.Errorf("counts = pages %d, commits %d, calls %d", r.PagesFetched, r.CommitsScanned, r.APICallCount)
	}
	if r.LastCursor != "c1" {
		t.Errorf("LastCursor = %s, want c1", r.LastCursor)
	}
	if !r.CompletedAt.After(r.StartedAt) {
		t.Error("CompletedAt should be after StartedAt")
	}
	if d, err := time.ParseDuration(r.Duration); err != nil || d < 2*time.Second {
		t.Errorf("Duration = %s, want at least 2s", r.Duration)
	}
}

func TestTracker_GenerateMetadata_Failure(t *testing.T) {
	tracker := New()
	params := testParams
	params.Commit = ""

	md := tracker.GenerateMetadata("dev", params, OutcomeFailed, errors.New("manifest fetch failed"))

	if !strings.HasPrefix(md.RunID, "resolve-") {
		t.Errorf("RunID = %s, want resolve- prefix", md.RunID)
	}
	if md.Results.Error != "manifest fetch failed" {
		t.Errorf("Error = %q", md.Results.Error)
	}
}

func TestSaveMetadata(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")

	tracker := New()
	tracker.RecordManifest("1.80.0-nightly", "deadbeef")
	md := tracker.GenerateMetadata("1.0.0", testParams, OutcomeNotFound, nil)

	path, err := SaveMetadata(md, dir)
	if err != nil {
		t.Fatalf("SaveMetadata() error = %v", err)
	}
	testutil.AssertFileExists(t, path)

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	saved := testutil.AssertMetadataFile(t, dir, "rust-lang/rust")
	results := saved["results"].(map[string]interface{})
	if results["outcome"] != OutcomeNotFound {
		t.Errorf("outcome = %v, want %s", results["outcome"], OutcomeNotFound)
	}
	if results["nightly_hash"] != "deadbeef" {
		t.Errorf("nightly_hash = %v, want deadbeef", results["nightly_hash"])
	}
}

func TestSaveMetadata_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	md := New().GenerateMetadata("dev", testParams, OutcomeFound, nil)
	if _, err := SaveMetadata(md, filepath.Join(blocker, "sub")); err == nil {
		t.Error("expected error when the directory cannot be created")
	}
}

func TestWriteMetadataToWriter(t *testing.T) {
	md := New().GenerateMetadata("1.0.0", testParams, OutcomeFound, nil)

	var buf bytes.Buffer
	if err := WriteMetadataToWriter(md, &buf); err != nil {
		t.Fatalf("WriteMetadataToWriter() error = %v", err)
	}

	if !strings.Contains(buf.String(), "\n  \"probe_version\"") {
		t.Errorf("expected indented JSON, got:\n%s", buf.String())
	}

	var decoded RunMetadata
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Parameters.Commit != "cafefeed" {
		t.Errorf("Commit = %s, want cafefeed", decoded.Parameters.Commit)
	}
}
