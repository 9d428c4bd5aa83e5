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

// Package output renders probe results either as human-readable text or as
// NDJSON (Newline Delimited JSON), one record per line.
//
// Both writers implement OutputWriter and accept the record types defined in
// this package. The text writer highlights the search verdict in color when
// asked to.
//
// Example usage:
//
//	w, err := output.New("json", os.Stdout, false)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	if err := w.Write(output.NightlyRecord{Version: v, Hash: h}); err != nil {
//	    return err
//	}
package output
