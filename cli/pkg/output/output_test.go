package output

import (
	"strings"
	"testing"

	"github.com/netsentry-io/netsentry/cli/pkg/color"
)

func TestTableRenderPadsColumns(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	table := NewTable("ID", "NAME")
	table.AddRow("a1", "short")
	table.AddRow("b2", "a much longer name")

	var buf strings.Builder
	table.RenderTo(&buf)
	out := buf.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "ID  NAME") {
		t.Errorf("unexpected header line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "--") {
		t.Errorf("expected separator line, got %q", lines[1])
	}
	// Both rows pad the first column to the same width.
	if strings.Index(lines[2], "short") != strings.Index(lines[3], "a much longer name") {
		t.Errorf("columns not aligned:\n%q\n%q", lines[2], lines[3])
	}
}

func TestTableRenderIgnoresExtraCells(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	table := NewTable("ONE")
	table.AddRow("a", "overflow")

	var buf strings.Builder
	table.RenderTo(&buf)
	if strings.Contains(buf.String(), "overflow") {
		t.Error("cells beyond the header count should be dropped")
	}
}
