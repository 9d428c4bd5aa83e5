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

package testutil

import (
	"bufio"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

// AssertNDJSONOutput validates that output is NDJSON with the expected number
// of records, each carrying requiredFields.
func AssertNDJSONOutput(t *testing.T, output string, expectedRecords int, requiredFields ...string) []map[string]interface{} {
	t.Helper()

	scanner := bufio.NewScanner(strings.NewReader(output))
	var records []map[string]interface{}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		var record map[string]interface{}
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Errorf("Line %d: invalid JSON: %v", len(records)+1, err)
			continue
		}

		for _, field := range requiredFields {
			if _, ok := record[field]; !ok {
				t.Errorf("Line %d: missing required field '%s'", len(records)+1, field)
			}
		}

		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		t.Fatalf("Error reading output: %v", err)
	}

	if len(records) != expectedRecords {
		t.Errorf("Expected %d records, got %d", expectedRecords, len(records))
	}
	return records
}

// AssertMetadataFile validates that dir holds exactly one run metadata report
// for repo and returns its decoded contents.
func AssertMetadataFile(t *testing.T, dir string, repo string) map[string]interface{} {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(dir, "run-metadata-*.json"))
	if err != nil {
		t.Fatalf("Failed to glob metadata files: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected 1 metadata file in %s, found %d", dir, len(matches))
	}

	var metadata map[string]interface{}
	ReadJSON(t, matches[0], &metadata)

	for _, field := range []string{"probe_version", "run_id", "parameters", "results"} {
		if _, ok := metadata[field]; !ok {
			t.Errorf("Metadata missing required field '%s'", field)
		}
	}

	params, ok := metadata["parameters"].(map[string]interface{})
	if !ok {
		t.Fatalf("Metadata parameters has unexpected type %T", metadata["parameters"])
	}
	if got := params["repository"]; got != repo {
		t.Errorf("Metadata repository = %v, want %s", got, repo)
	}

	return metadata
}

// AssertContainsString checks if a string contains a substring
func AssertContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("Expected string to contain %q, but it didn't.\nString: %s", needle, haystack)
	}
}

// AssertNotContainsString checks if a string does not contain a substring
func AssertNotContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Errorf("Expected string to not contain %q, but it did.\nString: %s", needle, haystack)
	}
}

// AssertErrorContains checks that an error contains expected text
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error containing %q, got nil", expected)
	}
	if !strings.Contains(err.Error(), expected) {
		t.Errorf("Expected error containing %q, got: %v", expected, err)
	}
}
