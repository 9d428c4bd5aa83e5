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
	"bytes"
	"errors"
	"testing"

	relaierrors "github.com/sirseerhq/nightly-probe/internal/errors"
)

// Compile-time checks that both writers implement OutputWriter
var (
	_ OutputWriter = (*Writer)(nil)
	_ OutputWriter = (*TextWriter)(nil)
)

func TestNew(t *testing.T) {
	tests := []struct {
		format   string
		wantType interface{}
		wantErr  bool
	}{
		{format: "text", wantType: &TextWriter{}},
		{format: "json", wantType: &Writer{}},
		{format: "ndjson", wantErr: true},
		{format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			w, err := New(tt.format, &buf, false)

			if tt.wantErr {
				if !errors.Is(err, relaierrors.ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			switch tt.wantType.(type) {
			case *TextWriter:
				if _, ok := w.(*TextWriter); !ok {
					t.Errorf("expected *TextWriter, got %T", w)
				}
			case *Writer:
				if _, ok := w.(*Writer); !ok {
					t.Errorf("expected *Writer, got %T", w)
				}
			}

			if err := w.Write(NightlyRecord{Version: "v", Hash: "h"}); err != nil {
				t.Errorf("Write() error = %v", err)
			}
			if err := w.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
			if buf.Len() == 0 {
				t.Error("Expected data to be written to buffer")
			}
		})
	}
}
