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

// Package metadata records statistics about a probe run: the nightly build
// that was resolved, the number of API calls made, and how many history
// pages and commits were scanned before the verdict.
//
// Reports are written as JSON files so that scheduled checks leave an audit
// trail that external tools can read.
package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"emperror.dev/errors"
	"github.com/sirseerhq/nightly-probe/internal/github"
)

const (
	// MethodVersion identifies the history query used for the search
	MethodVersion = "graphql-commit-history-v1"
)

// Tracker collects statistics during a run and generates metadata.
// Create one at the start of a run; it is not safe for concurrent use.
type Tracker struct {
	startTime      time.Time
	apiCallCount   int
	pagesFetched   int
	commitsScanned int
	lastCursor     string
	nightlyVersion string
	nightlyHash    string
}

// New creates a new metadata tracker and initializes it with the current time.
func New() *Tracker {
	return &Tracker{
		startTime: time.Now(),
	}
}

// IncrementAPICall records a request that is not a history page, such as the
// manifest download.
func (t *Tracker) IncrementAPICall() {
	t.apiCallCount++
}

// RecordManifest stores the resolved nightly build.
func (t *Tracker) RecordManifest(version, hash string) {
	t.nightlyVersion = version
	t.nightlyHash = hash
}

// RecordPage accounts for one fetched history page. Its signature matches
// history.PageObserver.
func (t *Tracker) RecordPage(page int, p *github.HistoryPage) {
	t.apiCallCount++
	t.pagesFetched = page
	t.commitsScanned += len(p.Commits)
	t.lastCursor = p.EndCursor
}

// PagesFetched returns the number of history pages recorded so far.
func (t *Tracker) PagesFetched() int {
	return t.pagesFetched
}

// GenerateMetadata creates the RunMetadata record for the run. outcome is one
// of the Outcome constants; runErr, when set, is stored as the error message.
func (t *Tracker) GenerateMetadata(probeVersion string, params RunParams, outcome string, runErr error) *RunMetadata {
	completedAt := time.Now()
	duration := completedAt.Sub(t.startTime)

	kind := "resolve"
	if params.Commit != "" {
		kind = "search"
	}

	md := &RunMetadata{
		ProbeVersion:  probeVersion,
		MethodVersion: MethodVersion,
		RunID:         fmt.Sprintf("%s-%d", kind, t.startTime.Unix()),
		Parameters:    params,
		Results: RunResults{
			NightlyVersion: t.nightlyVersion,
			NightlyHash:    t.nightlyHash,
			Outcome:        outcome,
			PagesFetched:   t.pagesFetched,
			CommitsScanned: t.commitsScanned,
			LastCursor:     t.lastCursor,
			Duration:       duration.String(),
			APICallCount:   t.apiCallCount,
			StartedAt:      t.startTime,
			CompletedAt:    completedAt,
		},
	}
	if runErr != nil {
		md.Results.Error = runErr.Error()
	}
	return md
}

// SaveMetadata persists a RunMetadata record to a JSON file in dir and
// returns its path. The file is written to a temporary name and renamed into
// place.
//
// The metadata file will be named: run-metadata-{timestamp}.json
func SaveMetadata(metadata *RunMetadata, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create metadata directory")
	}

	filename := fmt.Sprintf("run-metadata-%d.json", metadata.Results.StartedAt.Unix())
	path := filepath.Join(dir, filename)

	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return "", errors.Wrap(err, "failed to create metadata file")
	}

	if err := WriteMetadataToWriter(metadata, file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return "", errors.Wrap(err, "failed to write metadata")
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return "", errors.Wrap(err, "failed to close metadata file")
	}

	if err := os.Rename(tmpFile, path); err != nil {
		return "", errors.Wrap(err, "failed to save metadata file")
	}

	return path, nil
}

// WriteMetadataToWriter serializes metadata to indented JSON.
func WriteMetadataToWriter(metadata *RunMetadata, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}
