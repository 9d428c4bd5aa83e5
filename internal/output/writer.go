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

import (
	"encoding/json"
	"io"
	"sync"

	"emperror.dev/errors"
)

// Writer emits one JSON object per line. Every record carries a "kind"
// field so consumers can tell nightly and search lines apart.
type Writer struct {
	mu    sync.Mutex
	enc   *json.Encoder
	lines int
}

// NewWriter returns an NDJSON writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// Write encodes record as a single line.
func (w *Writer) Write(record interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.enc.Encode(withKind(record)); err != nil {
		return errors.Wrapf(err, "failed to write %T record", record)
	}
	w.lines++
	return nil
}

// Count returns the number of lines written so far.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines
}

// Close is a no-op; the caller owns the underlying writer.
func (w *Writer) Close() error {
	return nil
}
