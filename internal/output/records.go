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

package output

// NightlyRecord reports the resolved nightly build.
type NightlyRecord struct {
	Kind    string `json:"kind"`
	Version string `json:"version"`
	Hash    string `json:"hash"`
	Date    string `json:"date,omitempty"`
}

// SearchRecord reports the verdict of a history search.
type SearchRecord struct {
	Kind           string `json:"kind"`
	Commit         string `json:"commit"`
	Root           string `json:"root"`
	Found          bool   `json:"found"`
	Pages          int    `json:"pages_fetched"`
	CommitsScanned int    `json:"commits_scanned"`
	MatchedPage    int    `json:"matched_page,omitempty"`
}

// Record kinds, filled in by the writers when left empty.
const (
	KindNightly = "nightly"
	KindSearch  = "search"
)

// withKind returns record with its Kind set.
func withKind(record interface{}) interface{} {
	switch r := record.(type) {
	case NightlyRecord:
		if r.Kind == "" {
			r.Kind = KindNightly
		}
		return r
	case SearchRecord:
		if r.Kind == "" {
			r.Kind = KindSearch
		}
		return r
	}
	return record
}
