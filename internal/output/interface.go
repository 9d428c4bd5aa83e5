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
	"io"

	"emperror.dev/errors"
	relaierrors "github.com/sirseerhq/nightly-probe/internal/errors"
)

// OutputWriter defines the interface for writing probe results.
type OutputWriter interface {
	// Write writes a single record to the output.
	// The record should be immediately flushed to avoid memory accumulation.
	Write(record interface{}) error

	// Close releases any resources held by the writer.
	Close() error
}

// Formats lists the accepted output formats.
var Formats = []string{"text", "json"}

// New returns the writer for format. colored only affects text output.
func New(format string, w io.Writer, colored bool) (OutputWriter, error) {
	switch format {
	case "text":
		return NewTextWriter(w, colored), nil
	case "json":
		return NewWriter(w), nil
	default:
		return nil, errors.Wrapf(relaierrors.ErrInvalidArgument, "unknown output format %q", format)
	}
}
