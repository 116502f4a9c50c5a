package kreport

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseRow(t *testing.T) {
	row, err := ParseRow("60.00\t30\t10\tD\t2\t  Bacteria", nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if row.Percent != 60 {
		t.Errorf("percent = %g, want 60", row.Percent)
	}
	if row.Count != 30 || row.Direct != 10 {
		t.Errorf("counts = %d/%d, want 30/10", row.Count, row.Direct)
	}
	if row.Rank != "D" || row.TaxID != "2" {
		t.Errorf("rank/taxid = %s/%s, want D/2", row.Rank, row.TaxID)
	}
	if row.Name != "Bacteria" {
		t.Errorf("name not trimmed: %q", row.Name)
	}
	if row.Level != 2 {
		t.Errorf("level = %g, want 2", row.Level)
	}
}

func TestParseRowCompoundRank(t *testing.T) {
	row, err := ParseRow("10.00\t5\t0\tD1\t131567\t  Terrabacteria group", nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if row.Level != 2.5 {
		t.Errorf("level = %g, want 2.5", row.Level)
	}
}

func TestParseRowErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"too few columns", "60.00\t30\t10\tD\t2"},
		{"count not an integer", "60.00\tthirty\t10\tD\t2\tBacteria"},
		{"negative count", "60.00\t-1\t10\tD\t2\tBacteria"},
		{"direct count not an integer", "60.00\t30\tx\tD\t2\tBacteria"},
		{"unknown rank code", "60.00\t30\t10\tQ\t2\tBacteria"},
		{"empty rank code", "60.00\t30\t10\t\t2\tBacteria"},
		{"invalid percent", "abc\t30\t10\tD\t2\tBacteria"},
	}

	for _, test := range tests {
		_, err := ParseRow(test.line, nil)
		if err == nil {
			t.Errorf("%s: error expected for row %q", test.name, test.line)
			continue
		}
		if _, ok := err.(*ParseError); !ok {
			t.Errorf("%s: got %T, want *ParseError", test.name, err)
		}
	}
}

func TestReadReport(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sampleA.report.txt")
	data := "100.00\t50\t50\tR\t1\troot\n" +
		"60.00\t30\t10\tD\t2\t  Bacteria\n" +
		"\n" + // blank rows are skipped
		"40.00\t20\t20\tP\t3\t    Firmicutes\n"
	if err := os.WriteFile(file, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	rows, err := ReadReport(file, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	// input order is significant
	for i, name := range []string{"root", "Bacteria", "Firmicutes"} {
		if rows[i].Name != name {
			t.Errorf("row %d: name = %q, want %q", i, rows[i].Name, name)
		}
	}
}

func TestReadReportMalformed(t *testing.T) {
	file := filepath.Join(t.TempDir(), "broken.report.txt")
	data := "100.00\t50\t50\tR\t1\troot\n" +
		"60.00\tnot-a-number\t10\tD\t2\tBacteria\n"
	if err := os.WriteFile(file, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadReport(file, 1, 10)
	if err == nil {
		t.Fatal("error expected for malformed report")
	}
}
