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

// Profile is the flattened form of one sample/bin forest: fragment
// counts and taxonomy strings of the reported leaves, keyed by id path.
// IDs preserves discovery order for deterministic iteration.
type Profile struct {
	Sample string
	Bin    string

	IDs    []string
	Counts map[string]int
	Taxa   map[string]string
}

// Flatten selects the reported leaves of the forest and emits their
// count and taxonomy mappings. A node qualifies when it has no children
// and its parent's rank is one of the ten standard codes; leaves under
// intermediate sub-level ranks are excluded so partial taxonomies do
// not pollute the output. The forest is not used afterwards.
func (f *Forest) Flatten(sample string, bin string) *Profile {
	p := &Profile{
		Sample: sample,
		Bin:    bin,
		IDs:    make([]string, 0, len(f.Nodes)),
		Counts: make(map[string]int, len(f.Nodes)),
		Taxa:   make(map[string]string, len(f.Nodes)),
	}

	for _, node := range f.Nodes {
		if len(node.Children) > 0 {
			continue
		}
		if node.Parent == nil || !isStandardRank(node.Parent.Rank) {
			continue
		}

		id := node.IDPath
		if _, ok := p.Counts[id]; !ok {
			p.IDs = append(p.IDs, id)
		}
		p.Counts[id] += node.Count
		p.Taxa[id] = node.Taxonomy
	}

	return p
}
