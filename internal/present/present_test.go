package present

import (
	"bytes"
	"strings"
	"testing"

	"github.com/maci0/resembl/internal/config"
)

func sampleRows() []Row {
	return []Row{
		{Checksum: "abcdef0123456789", Names: []string{"f1", "f2"}, Jaccard: 0.875, Levenshtein: 92.5, Hybrid: 90.1, CFGSimilarity: 0.8, SharedTokens: 5},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, config.FormatJSON, sampleRows()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "abcdef0123456789") {
		t.Fatalf("json output missing checksum: %s", buf.String())
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, config.FormatCSV, sampleRows()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines = %d, want 2 (header + row)", len(lines))
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, config.FormatTable, sampleRows()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "abcdef012345") {
		t.Fatalf("table output missing checksum: %s", buf.String())
	}
}
