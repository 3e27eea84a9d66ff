// Package output formats CLI results for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/netsentry-io/netsentry/cli/pkg/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
)

func Success(format string, a ...any) {
	successColor.Printf("✓ "+format+"\n", a...)
}

func Error(format string, a ...any) {
	errorColor.Fprintf(os.Stderr, "✗ "+format+"\n", a...)
}

func Info(format string, a ...any) {
	infoColor.Printf(format+"\n", a...)
}

func Warn(format string, a ...any) {
	warnColor.Printf("⚠ "+format+"\n", a...)
}

func JSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table renders rows with columns padded to the widest cell.
type Table struct {
	headers []string
	rows    [][]string
}

func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *Table) Render() {
	t.RenderTo(os.Stdout)
}

func (t *Table) RenderTo(w io.Writer) {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	header := color.New(color.FgWhite, color.Bold)
	for i, h := range t.headers {
		header.Fprintf(w, "%-*s  ", widths[i], h)
	}
	fmt.Fprintln(w)

	for _, width := range widths {
		fmt.Fprint(w, strings.Repeat("-", width)+"  ")
	}
	fmt.Fprintln(w)

	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(w, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(w)
	}
}
