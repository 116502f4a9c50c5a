package kreport

import (
	"strings"
	"testing"
)

func TestLevelOf(t *testing.T) {
	tests := []struct {
		rank  string
		level float64
		ok    bool
	}{
		{"U", 0, true},
		{"R", 1, true},
		{"D", 2, true},
		{"K", 2, true},
		{"P", 3, true},
		{"C", 4, true},
		{"O", 5, true},
		{"F", 6, true},
		{"G", 7, true},
		{"S", 8, true},
		{"R1", 1.5, true},
		{"D1", 2.5, true},
		{"D2", 2.5, true},
		{"G1", 7.5, true},
		{"", 0, false},
		{"X", 0, false},
		{"X1", 0, false},
	}

	for _, test := range tests {
		level, err := levelOf(test.rank)
		if test.ok {
			if err != nil {
				t.Errorf("levelOf(%q): unexpected error: %s", test.rank, err)
				continue
			}
			if level != test.level {
				t.Errorf("levelOf(%q) = %g, want %g", test.rank, level, test.level)
			}
		} else if err == nil {
			t.Errorf("levelOf(%q): error expected", test.rank)
		}
	}
}

func TestIsStandardRank(t *testing.T) {
	for _, rank := range []string{"U", "R", "D", "K", "P", "C", "O", "F", "G", "S"} {
		if !isStandardRank(rank) {
			t.Errorf("isStandardRank(%q) = false, want true", rank)
		}
	}
	for _, rank := range []string{"", "D1", "R2", "X", "d"} {
		if isStandardRank(rank) {
			t.Errorf("isStandardRank(%q) = true, want false", rank)
		}
	}
}

func TestFillRankGaps(t *testing.T) {
	got := FillRankGaps("d__Bacteria;p__Firmicutes", ";", true)
	want := "d__Bacteria;p__Firmicutes;c__unclassified;o__unclassified;f__unclassified;g__unclassified;s__unclassified"
	if got != want {
		t.Errorf("FillRankGaps:\n got %s\nwant %s", got, want)
	}

	// idempotent at full depth
	if again := FillRankGaps(got, ";", true); again != got {
		t.Errorf("FillRankGaps not idempotent:\n got %s\nwant %s", again, got)
	}

	// more than seven levels: unchanged
	deep := got + ";t__strainA"
	if got := FillRankGaps(deep, ";", true); got != deep {
		t.Errorf("FillRankGaps changed an eight-level string: %s", got)
	}
}

func TestFillRankGapsNoPrefix(t *testing.T) {
	got := FillRankGaps("d__Bacteria", ";", false)
	if n := len(strings.Split(got, ";")); n != FillDepth {
		t.Fatalf("filled string has %d levels, want %d", n, FillDepth)
	}
	if !strings.HasSuffix(got, ";unclassified") {
		t.Errorf("placeholders should be bare: %s", got)
	}
	if strings.Contains(got, "__unclassified") {
		t.Errorf("placeholders should carry no rank prefix: %s", got)
	}
}

func TestFillRankGapsCustomSep(t *testing.T) {
	got := FillRankGaps("d__Bacteria|p__Firmicutes", "|", true)
	if n := len(strings.Split(got, "|")); n != FillDepth {
		t.Fatalf("filled string has %d levels, want %d: %s", n, FillDepth, got)
	}
	if !strings.HasSuffix(got, "|s__unclassified") {
		t.Errorf("unexpected filled string: %s", got)
	}
}
