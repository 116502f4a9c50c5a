package kreport

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func profileOf(sample, bin string, counts map[string]int, taxa map[string]string, order []string) *Profile {
	return &Profile{Sample: sample, Bin: bin, IDs: order, Counts: counts, Taxa: taxa}
}

func TestAggregateOuterJoin(t *testing.T) {
	a := profileOf("s1", "bin1",
		map[string]int{"2|3": 20, "2|": 10},
		map[string]string{"2|3": "d__Bacteria;p__Firmicutes", "2|": "d__Bacteria;p__unclassified"},
		[]string{"2|3", "2|"})
	b := profileOf("s2", "bin1",
		map[string]int{"2|3": 7, "2157": 5},
		map[string]string{"2|3": "d__Bacteria;p__Firmicutes", "2157": "d__Archaea"},
		[]string{"2|3", "2157"})

	abundance, taxonomy, err := Aggregate([]*Profile{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if !reflect.DeepEqual(abundance.Samples, []string{"s1", "s2"}) {
		t.Errorf("samples = %v", abundance.Samples)
	}
	if !reflect.DeepEqual(abundance.IDs, []string{"2157", "2|", "2|3"}) {
		t.Errorf("ids = %v", abundance.IDs)
	}

	want := [][]float64{
		{0, 5},  // 2157: absent from s1
		{10, 0}, // 2|:   absent from s2
		{20, 7}, // 2|3
	}
	if !reflect.DeepEqual(abundance.Values, want) {
		t.Errorf("values = %v, want %v", abundance.Values, want)
	}

	wantRows := []TaxonomyRow{
		{ID: "2157", Taxon: "d__Archaea"},
		{ID: "2|", Taxon: "d__Bacteria;p__unclassified"},
		{ID: "2|3", Taxon: "d__Bacteria;p__Firmicutes"},
	}
	if !reflect.DeepEqual(taxonomy.Rows, wantRows) {
		t.Errorf("taxonomy rows = %v, want %v", taxonomy.Rows, wantRows)
	}
}

// Bins of the same sample collapse onto one column.
func TestAggregateSumsBins(t *testing.T) {
	a := profileOf("s1", "bin1",
		map[string]int{"2": 10}, map[string]string{"2": "d__Bacteria"}, []string{"2"})
	b := profileOf("s1", "bin2",
		map[string]int{"2": 4, "2157": 1},
		map[string]string{"2": "d__Bacteria", "2157": "d__Archaea"},
		[]string{"2", "2157"})

	abundance, _, err := Aggregate([]*Profile{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if len(abundance.Samples) != 1 {
		t.Fatalf("samples = %v, want one column", abundance.Samples)
	}
	want := [][]float64{{14}, {1}} // "2" sorts before "2157"
	if !reflect.DeepEqual(abundance.Values, want) {
		t.Errorf("values = %v, want %v", abundance.Values, want)
	}
}

// Feature rows are id-sorted, so only the column order follows the
// input order; cell contents must not depend on it.
func TestAggregateInputOrder(t *testing.T) {
	a := profileOf("s1", "b",
		map[string]int{"2": 3}, map[string]string{"2": "d__Bacteria"}, []string{"2"})
	b := profileOf("s2", "b",
		map[string]int{"2": 8}, map[string]string{"2": "d__Bacteria"}, []string{"2"})

	t1, _, err := Aggregate([]*Profile{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	t2, _, err := Aggregate([]*Profile{b, a})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	cell := func(tab *AbundanceTable, id, sample string) float64 {
		for i, v := range tab.IDs {
			if v != id {
				continue
			}
			for j, s := range tab.Samples {
				if s == sample {
					return tab.Values[i][j]
				}
			}
		}
		t.Fatalf("missing cell %s/%s", id, sample)
		return 0
	}

	for _, sample := range []string{"s1", "s2"} {
		if cell(t1, "2", sample) != cell(t2, "2", sample) {
			t.Errorf("cell 2/%s differs with input order", sample)
		}
	}
}

func TestAggregateSkipsNilProfiles(t *testing.T) {
	a := profileOf("s1", "b",
		map[string]int{"2": 3}, map[string]string{"2": "d__Bacteria"}, []string{"2"})

	abundance, _, err := Aggregate([]*Profile{nil, a, nil})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(abundance.Samples) != 1 || abundance.Values[0][0] != 3 {
		t.Errorf("unexpected table: %v %v", abundance.Samples, abundance.Values)
	}
}

func TestAggregateEmpty(t *testing.T) {
	for _, profiles := range [][]*Profile{nil, {nil, nil}} {
		_, _, err := Aggregate(profiles)
		if errors.Cause(err) != ErrEmptyResult {
			t.Errorf("got %v, want ErrEmptyResult", err)
		}
	}
}

func TestTaxonomyTableFillGaps(t *testing.T) {
	tab := &TaxonomyTable{Rows: []TaxonomyRow{
		{ID: "2|3", Taxon: "d__Bacteria;p__Firmicutes"},
		{ID: "x", Taxon: "d__a;p__b;c__c;o__d;f__e;g__f;s__g"},
	}}

	tab.FillGaps(DefaultTaxonomySep, true)

	want := "d__Bacteria;p__Firmicutes;c__unclassified;o__unclassified;f__unclassified;g__unclassified;s__unclassified"
	if got := tab.Rows[0].Taxon; got != want {
		t.Errorf("filled taxonomy = %q", got)
	}
	if got := tab.Rows[1].Taxon; got != "d__a;p__b;c__c;o__d;f__e;g__f;s__g" {
		t.Errorf("complete taxonomy changed: %q", got)
	}
}
