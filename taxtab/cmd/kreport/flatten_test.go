package kreport

import (
	"reflect"
	"testing"
)

func TestFlattenScenario(t *testing.T) {
	forest, err := BuildForest(scenarioRows(t))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	p := forest.Flatten("gut7", "bin.003")

	if p.Sample != "gut7" || p.Bin != "bin.003" {
		t.Errorf("labels = %q/%q, want gut7/bin.003", p.Sample, p.Bin)
	}
	wantIDs := []string{"2|3", "2|", ""}
	if !reflect.DeepEqual(p.IDs, wantIDs) {
		t.Errorf("ids = %v, want %v", p.IDs, wantIDs)
	}
}

// Leaves whose parent carries a sub-level rank (D1, P1, ...) are not
// part of the profile, and top-level roots never flatten themselves.
func TestFlattenSkipsSubLevelParents(t *testing.T) {
	rows := rowsFromTriples(t, []string{
		"100.00\t10\t0\tR\t1\troot",
		"50.00\t5\t0\tR1\t131567\tcellular organisms",
		"100.00\t10\t10\tD\t2\tBacteria",
		"50.00\t5\t0\tD1\t1783272\tTerrabacteria group",
		"50.00\t5\t5\tP1\t1798711\tCyanobacteria/Melainabacteria group",
	})

	forest, err := BuildForest(rows)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	p := forest.Flatten("s", "b")

	wantCounts := map[string]int{"2": 10}
	if !reflect.DeepEqual(p.Counts, wantCounts) {
		t.Errorf("counts = %v, want %v", p.Counts, wantCounts)
	}
	if got := p.Taxa["2"]; got != "d__Bacteria" {
		t.Errorf("taxonomy = %q, want d__Bacteria", got)
	}
}

// Synthetic children of top-level parents inherit no prefix, so they
// all sit at domain depth with the taxonomy "d__unclassified" and the
// empty id path. With several roots they share one profile entry:
// counts sum and the taxonomy strings are identical by construction.
func TestFlattenTopLevelSyntheticsShareKey(t *testing.T) {
	rows := rowsFromTriples(t, []string{
		"50.00\t30\t10\tR\t1\troot",
		"40.00\t20\t20\tD\t2\tBacteria",
		"30.00\t8\t0\tR\t2787823\tother entries",
		"20.00\t5\t5\tD\t2787854\tother sequences",
	})

	forest, err := BuildForest(rows)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	p := forest.Flatten("s", "b")

	if got := p.Counts[""]; got != 13 { // 30-20 under root, 8-5 under other entries
		t.Errorf("merged synthetic count = %d, want 13", got)
	}
	if got := p.Taxa[""]; got != "d__unclassified" {
		t.Errorf("merged synthetic taxonomy = %q, want d__unclassified", got)
	}
	var n int
	for _, id := range p.IDs {
		if id == "" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("empty id appears %d times in the key list, want 1", n)
	}
}

func TestFlattenEmptyForest(t *testing.T) {
	forest, err := BuildForest(nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	p := forest.Flatten("s", "b")
	if len(p.IDs) != 0 || len(p.Counts) != 0 {
		t.Errorf("expected empty profile, got %v", p.Counts)
	}
}
