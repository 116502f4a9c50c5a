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
	"math"
	"sort"

	"github.com/zeebo/wyhash"
)

const (
	taxonomySep = DefaultTaxonomySep
	idPathSep   = "|"
)

// wyhash seed for node name lookup tables.
const hashSeed = 1

// TaxonNode is one taxon of a constructed classification forest.
// Children are owned by the node in discovery order; Parent is a plain
// back-reference.
type TaxonNode struct {
	Rank  string
	Name  string
	Count int
	Level float64
	TaxID string // empty for synthetic unclassified nodes

	Parent   *TaxonNode
	Children []*TaxonNode

	// Taxonomy is the ";"-joined chain of rank__name segments from the
	// highest standard ancestor down to this node. Nodes directly under
	// unclassified/root carry no prefix from them.
	Taxonomy string

	// IDPath is the "|"-joined chain of taxon ids along the same span.
	// Synthetic nodes contribute an empty trailing segment.
	IDPath string
}

// topLevel reports whether the node sits above the taxonomy proper
// (unclassified or root rank class).
func (n *TaxonNode) topLevel() bool {
	c := n.Rank[0]
	return c == 'U' || c == 'R'
}

// linkTo attaches n under parent and extends n's taxonomy string and id
// path from the parent's. Unclassified/root parents contribute no prefix.
func (n *TaxonNode) linkTo(parent *TaxonNode) {
	n.Parent = parent
	parent.Children = append(parent.Children, n)
	if parent.topLevel() {
		return
	}
	n.Taxonomy = parent.Taxonomy + taxonomySep + n.Taxonomy
	n.IDPath = parent.IDPath + idPathSep + n.IDPath
}

// Forest is the classification tree(s) of one sample/bin report,
// indexed by rank class with nodes in insertion order.
type Forest struct {
	// Nodes in insertion order, synthetic nodes appended last.
	Nodes []*TaxonNode

	// rank class -> name hash -> node, for duplicate detection
	classes map[byte]map[uint64]*TaxonNode
}

// BuildForest constructs a forest from the ordered rows of one report.
//
// Nodes are unique by (rank class, name) within a forest; re-encountered
// pairs are skipped. A non-root row's parent is the nearest preceding row
// whose level is exactly one less than its own; tracking the most recent
// node per level gives the same answer as a reverse scan in O(n).
// After all rows are placed, count gaps between every non-leaf node and
// its children are reconciled with synthetic unclassified children, so
// fragment counts are conserved down the tree.
func BuildForest(rows []*TaxonRow) (*Forest, error) {
	forest := &Forest{
		Nodes:   make([]*TaxonNode, 0, len(rows)),
		classes: make(map[byte]map[uint64]*TaxonNode, len(rankDepths)),
	}

	recent := make(map[float64]*TaxonNode, 16) // most recent node per level

	for _, row := range rows {
		class := row.Rank[0]
		h := wyhash.HashString(row.Name, hashSeed)

		byName, ok := forest.classes[class]
		if !ok {
			byName = make(map[uint64]*TaxonNode, 8)
			forest.classes[class] = byName
		} else if node, ok := byName[h]; ok {
			// duplicate (rank class, name): no new node, but the row still
			// counts as the most recent occupant of its level
			recent[row.Level] = node
			continue
		}

		node := &TaxonNode{
			Rank:     row.Rank,
			Name:     row.Name,
			Count:    row.Count,
			Level:    row.Level,
			TaxID:    row.TaxID,
			Taxonomy: taxonSegment(row.Rank, row.Name),
			IDPath:   row.TaxID,
		}

		if !node.topLevel() {
			parent := recent[row.Level-1]
			if parent == nil {
				return nil, &StructureError{Rank: row.Rank, Name: row.Name, Level: row.Level}
			}
			node.linkTo(parent)
		}

		byName[h] = node
		forest.Nodes = append(forest.Nodes, node)
		recent[row.Level] = node
	}

	forest.reconcile()
	return forest, nil
}

// reconcile inserts synthetic unclassified children wherever the
// children of a node account for fewer fragments than the node itself,
// walking levels from the deepest backward. Synthetic nodes carry an
// empty taxon id and are never subdivided further.
func (f *Forest) reconcile() {
	byLevel := make(map[float64][]*TaxonNode, 16)
	levels := make([]float64, 0, 16)
	for _, node := range f.Nodes {
		if _, ok := byLevel[node.Level]; !ok {
			levels = append(levels, node.Level)
		}
		byLevel[node.Level] = append(byLevel[node.Level], node)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(levels)))

	for _, level := range levels {
		for _, node := range byLevel[level] {
			if len(node.Children) == 0 {
				continue
			}
			var sum int
			for _, child := range node.Children {
				sum += child.Count
			}
			if sum < node.Count {
				f.Nodes = append(f.Nodes, node.newUnclassifiedChild(node.Count-sum))
			}
		}
	}
}

// newUnclassifiedChild appends a synthetic child one standard level
// deeper, absorbing the count gap between n and its real children.
func (n *TaxonNode) newUnclassifiedChild(gap int) *TaxonNode {
	depth := math.Floor(n.Level) + 1
	rank := string(depthCode(depth))

	child := &TaxonNode{
		Rank:     rank,
		Name:     "unclassified",
		Count:    gap,
		Level:    depth,
		Taxonomy: taxonSegment(rank, "unclassified"),
	}

	child.Parent = n
	n.Children = append(n.Children, child)
	if !n.topLevel() {
		child.Taxonomy = n.Taxonomy + taxonomySep + child.Taxonomy
		child.IDPath = n.IDPath + idPathSep
	}
	return child
}
