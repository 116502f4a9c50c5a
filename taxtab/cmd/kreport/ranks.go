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

// Package kreport reconstructs taxonomic classification trees from
// Kraken2-style report files and flattens them into abundance and
// taxonomy tables.
package kreport

import (
	"fmt"
	"strings"
)

// Rank codes of Kraken2-style reports and their numeric depths.
// 'K' (kingdom) shares the domain depth: depending on the taxonomy
// vintage a report carries exactly one of D/K directly above phylum,
// and the parent search requires adjacent depths to differ by one.
var rankDepths = map[byte]float64{
	'U': 0,
	'R': 1,
	'D': 2,
	'K': 2,
	'P': 3,
	'C': 4,
	'O': 5,
	'F': 6,
	'G': 7,
	'S': 8,
}

// canonical rank code at each standard depth, used for naming
// synthetic unclassified nodes.
var depthCodes = []byte{'U', 'R', 'D', 'P', 'C', 'O', 'F', 'G', 'S'}

// rank codes of the seven reported levels, domain down to species.
var fillCodes = []string{"d", "p", "c", "o", "f", "g", "s"}

// FillDepth is the uniform number of levels of emitted taxonomy strings.
const FillDepth = 7

// DefaultTaxonomySep separates levels within a taxonomy string.
const DefaultTaxonomySep = ";"

// levelOf computes the numeric depth of a rank code. Compound codes
// (a standard letter plus a sub-level suffix, e.g. D1) sit half a step
// below their standard rank so they never collide with standard depths.
func levelOf(rank string) (float64, error) {
	if rank == "" {
		return 0, fmt.Errorf("empty rank code")
	}
	depth, ok := rankDepths[rank[0]]
	if !ok {
		return 0, fmt.Errorf("unknown rank code: %s", rank)
	}
	if len(rank) > 1 {
		return depth + 0.5, nil
	}
	return depth, nil
}

// isStandardRank reports whether rank is one of the ten single-letter codes.
func isStandardRank(rank string) bool {
	if len(rank) != 1 {
		return false
	}
	_, ok := rankDepths[rank[0]]
	return ok
}

// depthCode returns the canonical rank code at a standard depth,
// clamped to species for anything deeper.
func depthCode(depth float64) byte {
	i := int(depth)
	if i >= len(depthCodes) {
		i = len(depthCodes) - 1
	}
	if i < 0 {
		i = 0
	}
	return depthCodes[i]
}

// taxonSegment composes one level of a taxonomy string, e.g. "d__Bacteria".
func taxonSegment(rank string, name string) string {
	return strings.ToLower(rank) + "__" + name
}

// FillRankGaps pads a taxonomy string with fewer than FillDepth levels
// down to species depth, appending one "unclassified" placeholder per
// missing level. Strings already at or beyond FillDepth levels are
// returned unchanged, so filling is idempotent. With rankPrefix the
// placeholders carry the rank code of their level, e.g. "s__unclassified".
func FillRankGaps(taxon string, sep string, rankPrefix bool) string {
	if sep == "" {
		sep = DefaultTaxonomySep
	}
	levels := strings.Split(taxon, sep)
	if len(levels) >= FillDepth {
		return taxon
	}
	for i := len(levels); i < FillDepth; i++ {
		if rankPrefix {
			levels = append(levels, fillCodes[i]+"__unclassified")
		} else {
			levels = append(levels, "unclassified")
		}
	}
	return strings.Join(levels, sep)
}
