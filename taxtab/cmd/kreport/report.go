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
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/shenwei356/breader"
)

// numReportFields is the number of tab-separated columns of a report row:
// coverage percent, fragments covered by the clade, fragments assigned
// directly, rank code, taxon id, name.
const numReportFields = 6

// TaxonRow is one parsed report row. Rows keep their input order: the
// order encodes the nesting the tree builder resolves parents from.
type TaxonRow struct {
	Percent float64 // coverage percent of the clade
	Count   int     // fragments covered by the clade rooted at this taxon
	Direct  int     // fragments assigned directly to this taxon
	Rank    string  // rank code, e.g. "D", or compound like "D1"
	TaxID   string
	Name    string
	Level   float64
}

// ParseRow parses one tab-separated report row. The items buffer is
// reused across calls; pass nil to let ParseRow allocate its own.
func ParseRow(line string, items *[]string) (*TaxonRow, error) {
	if items == nil || cap(*items) < numReportFields {
		tmp := make([]string, numReportFields)
		items = &tmp
	} else {
		*items = (*items)[:numReportFields]
	}
	stringSplitNByByte(line, '\t', numReportFields, items)
	if len(*items) < numReportFields {
		return nil, &ParseError{Row: line, Reason: "fewer than 6 columns"}
	}

	row := &TaxonRow{}

	var err error
	row.Percent, err = strconv.ParseFloat(strings.TrimSpace((*items)[0]), 64)
	if err != nil {
		return nil, &ParseError{Row: line, Reason: "invalid coverage percent: " + (*items)[0]}
	}

	row.Count, err = strconv.Atoi(strings.TrimSpace((*items)[1]))
	if err != nil {
		return nil, &ParseError{Row: line, Reason: "fragment count not an integer: " + (*items)[1]}
	}
	if row.Count < 0 {
		return nil, &ParseError{Row: line, Reason: "negative fragment count: " + (*items)[1]}
	}

	row.Direct, err = strconv.Atoi(strings.TrimSpace((*items)[2]))
	if err != nil {
		return nil, &ParseError{Row: line, Reason: "direct count not an integer: " + (*items)[2]}
	}

	row.Rank = strings.TrimSpace((*items)[3])
	row.Level, err = levelOf(row.Rank)
	if err != nil {
		return nil, &ParseError{Row: line, Reason: err.Error()}
	}

	row.TaxID = strings.TrimSpace((*items)[4])
	row.Name = strings.TrimSpace((*items)[5])

	return row, nil
}

// ReadReport reads one report file (plain or gzipped) into an ordered
// row sequence. Row order is preserved.
func ReadReport(file string, threads int, chunkSize int) ([]*TaxonRow, error) {
	if threads < 1 {
		threads = 1
	}
	if chunkSize < 1 {
		chunkSize = 1000
	}

	pool := &sync.Pool{New: func() interface{} {
		tmp := make([]string, numReportFields)
		return &tmp
	}}

	fn := func(line string) (interface{}, bool, error) {
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return nil, false, nil
		}

		items := pool.Get().(*[]string)

		row, err := ParseRow(line, items)

		pool.Put(items)
		if err != nil {
			return nil, false, err
		}
		return row, true, nil
	}

	reader, err := breader.NewBufferedReader(file, threads, chunkSize, fn)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}

	rows := make([]*TaxonRow, 0, 1024)
	var firstErr error
	for chunk := range reader.Ch {
		if firstErr != nil { // drain remaining chunks
			continue
		}
		if chunk.Err != nil {
			firstErr = chunk.Err
			continue
		}
		for _, data := range chunk.Data {
			rows = append(rows, data.(*TaxonRow))
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return rows, nil
}

func stringSplitNByByte(s string, sep byte, n int, a *[]string) {
	n--
	i := 0
	for i < n {
		m := strings.IndexByte(s, sep)
		if m < 0 {
			break
		}
		(*a)[i] = s[:m]
		s = s[m+1:]
		i++
	}
	(*a)[i] = s

	(*a) = (*a)[:i+1]
}
