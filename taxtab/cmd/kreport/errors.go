// Copyright © 2023-2026 The taxtab Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package kreport

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrEmptyResult is returned when aggregation produces a table with no
// features, e.g. all reports were empty or every leaf was filtered out.
var ErrEmptyResult = errors.New("taxtab/kreport: empty abundance table, no taxa left after aggregation")

// ParseError reports a malformed report row: missing columns, a
// non-integer fragment count, or an unknown rank code. It is fatal for
// the report it occurred in, not for the whole batch.
type ParseError struct {
	Row    string // raw row content
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s: row %q", e.Reason, e.Row)
}

// StructureError reports a row for which no qualifying ancestor exists:
// no preceding row sits exactly one level above it. It indicates a
// report whose rank ordering violates the monotonic-depth assumption
// and is fatal for that report.
type StructureError struct {
	Rank  string
	Name  string
	Level float64
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("structure error: no ancestor at level %g for %s (rank %s)",
		e.Level-1, e.Name, e.Rank)
}
