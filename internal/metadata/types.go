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

// Package metadata types define the structures used for tracking and
// persisting information about probe runs.
package metadata

import (
	"time"
)

// RunMetadata is the complete record of a single probe run: what was asked,
// what the nightly resolved to, and how much of the history was read.
type RunMetadata struct {
	ProbeVersion  string     `json:"probe_version"`
	MethodVersion string     `json:"method_version"`
	RunID         string     `json:"run_id"`
	Parameters    RunParams  `json:"parameters"`
	Results       RunResults `json:"results"`
}

// RunParams captures the inputs of a run so that it can be reproduced.
type RunParams struct {
	Repository      string `json:"repository"`
	ManifestURL     string `json:"manifest_url"`
	Commit          string `json:"commit,omitempty"`
	MaxAttempts     int    `json:"max_attempts"`
	PageSize        int    `json:"page_size"`
	StopOnExhausted bool   `json:"stop_on_exhausted"`
}

// RunResults contains the statistics of a completed run.
type RunResults struct {
	NightlyVersion string    `json:"nightly_version,omitempty"`
	NightlyHash    string    `json:"nightly_hash,omitempty"`
	Outcome        string    `json:"outcome"`
	Error          string    `json:"error,omitempty"`
	PagesFetched   int       `json:"pages_fetched"`
	CommitsScanned int       `json:"commits_scanned"`
	LastCursor     string    `json:"last_cursor,omitempty"`
	Duration       string    `json:"run_duration"`
	APICallCount   int       `json:"api_calls_made"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Run outcomes.
const (
	OutcomeResolved = "resolved"
	OutcomeFound    = "found"
	OutcomeNotFound = "not found"
	OutcomeFailed   = "failed"
)
