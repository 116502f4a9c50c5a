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
	"sort"

	"github.com/twotwotwo/sorts"
)

// AbundanceTable is the merged feature table: one row per taxon id path,
// one column per sample, zero-filled where a sample lacks a taxon.
type AbundanceTable struct {
	IDs     []string    // sorted feature ids
	Samples []string    // column order = first occurrence among inputs
	Values  [][]float64 // Values[i][j] = count of IDs[i] in Samples[j]
}

// TaxonomyRow maps one feature id to its taxonomy string.
type TaxonomyRow struct {
	ID    string
	Taxon string
}

// TaxonomyTable is the merged feature-to-taxonomy lookup, sorted by id,
// exact-duplicate pairs dropped.
type TaxonomyTable struct {
	Rows []TaxonomyRow
}

type taxonomyRows []TaxonomyRow

func (r taxonomyRows) Len() int { return len(r) }
func (r taxonomyRows) Less(i, j int) bool {
	if r[i].ID != r[j].ID {
		return r[i].ID < r[j].ID
	}
	return r[i].Taxon < r[j].Taxon
}
func (r taxonomyRows) Swap(i, j int) { r[i], r[j] = r[j], r[i] }

// Aggregate merges per-bin profiles into one abundance table and one
// taxonomy table. Counts of bins of the same sample are summed per
// taxon (outer join, missing combinations count zero), then samples are
// outer-joined into the final table. Returns ErrEmptyResult when no
// taxon survives the merge.
func Aggregate(profiles []*Profile) (*AbundanceTable, *TaxonomyTable, error) {
	samples := make([]string, 0, len(profiles))
	bySample := make(map[string]map[string]float64, len(profiles))

	ids := make([]string, 0, 1024)
	seenID := make(map[string]interface{}, 1024)

	taxRows := make(taxonomyRows, 0, 1024)
	seenPair := make(map[TaxonomyRow]interface{}, 1024)

	for _, p := range profiles {
		if p == nil {
			continue
		}

		counts, ok := bySample[p.Sample]
		if !ok {
			counts = make(map[string]float64, len(p.IDs))
			bySample[p.Sample] = counts
			samples = append(samples, p.Sample)
		}

		for _, id := range p.IDs {
			counts[id] += float64(p.Counts[id])

			if _, ok := seenID[id]; !ok {
				seenID[id] = nil
				ids = append(ids, id)
			}

			pair := TaxonomyRow{ID: id, Taxon: p.Taxa[id]}
			if _, ok := seenPair[pair]; !ok {
				seenPair[pair] = nil
				taxRows = append(taxRows, pair)
			}
		}
	}

	if len(ids) == 0 {
		return nil, nil, ErrEmptyResult
	}

	sorts.Quicksort(sort.StringSlice(ids))
	sorts.Quicksort(taxRows)

	values := make([][]float64, len(ids))
	for i, id := range ids {
		row := make([]float64, len(samples))
		for j, sample := range samples {
			row[j] = bySample[sample][id] // missing -> 0
		}
		values[i] = row
	}

	abundance := &AbundanceTable{IDs: ids, Samples: samples, Values: values}
	taxonomy := &TaxonomyTable{Rows: taxRows}
	return abundance, taxonomy, nil
}

// FillGaps pads every taxonomy string of the table to the uniform
// seven-level depth. Already-complete strings are left unchanged.
func (t *TaxonomyTable) FillGaps(sep string, rankPrefix bool) {
	for i := range t.Rows {
		t.Rows[i].Taxon = FillRankGaps(t.Rows[i].Taxon, sep, rankPrefix)
	}
}
