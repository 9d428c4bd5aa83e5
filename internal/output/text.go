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
	"fmt"
	"io"
	"sync"

	"emperror.dev/errors"
	"github.com/fatih/color"
)

// TextWriter prints records for people reading a terminal.
type TextWriter struct {
	mu       sync.Mutex
	output   io.Writer
	found    *color.Color
	notFound *color.Color
	count    int
}

// NewTextWriter creates a text writer. When colored is set the search verdict
// is printed in green or red regardless of what output is.
func NewTextWriter(w io.Writer, colored bool) *TextWriter {
	tw := &TextWriter{
		output:   w,
		found:    color.New(color.FgGreen, color.Bold),
		notFound: color.New(color.FgRed, color.Bold),
	}
	if colored {
		tw.found.EnableColor()
		tw.notFound.EnableColor()
	} else {
		tw.found.DisableColor()
		tw.notFound.DisableColor()
	}
	return tw
}

// Write prints a NightlyRecord or SearchRecord.
func (w *TextWriter) Write(record interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var err error
	switch r := record.(type) {
	case NightlyRecord:
		_, err = fmt.Fprintf(w.output, "nightly:\n  version: %s\n  hash: %s\n", r.Version, r.Hash)
		if err == nil && r.Date != "" {
			_, err = fmt.Fprintf(w.output, "  date: %s\n", r.Date)
		}
	case SearchRecord:
		if r.Found {
			_, err = w.found.Fprintf(w.output, "Found! Nightly build contains this commit: %s\n", r.Commit)
		} else {
			_, err = w.notFound.Fprintf(w.output, "Not found! Nightly build doesn't contain this commit: %s\n", r.Commit)
		}
	default:
		return errors.Errorf("unsupported record type %T", record)
	}
	if err != nil {
		return errors.Wrap(err, "failed to write record")
	}

	w.count++
	return nil
}

// Count returns the number of records written.
func (w *TextWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close is a no-op; the caller owns the underlying writer.
func (w *TextWriter) Close() error {
	return nil
}
