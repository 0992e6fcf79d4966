package output

import (
	"io"
	"strings"

	"github.com/rivo/uniseg"
)

// columnGap separates table columns.
const columnGap = "  "

// Table renders aligned columns for text output. Widths are measured in
// terminal cells, so emoji handles line up with plain addresses.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row. Missing cells render blank.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the header, a dashed rule and every row to w.
func (t *Table) Render(w io.Writer) error {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return nil
	}

	widths := t.widths()
	var sb strings.Builder
	if len(t.headers) > 0 {
		writeLine(&sb, t.headers, widths)
		rule := make([]string, len(widths))
		for i, n := range widths {
			rule[i] = strings.Repeat("-", n)
		}
		writeLine(&sb, rule, widths)
	}
	for _, row := range t.rows {
		writeLine(&sb, row, widths)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// String returns the rendered table.
func (t *Table) String() string {
	var sb strings.Builder
	_ = t.Render(&sb)
	return sb.String()
}

func (t *Table) widths() []int {
	n := len(t.headers)
	for _, row := range t.rows {
		n = max(n, len(row))
	}

	widths := make([]int, n)
	measure := func(cells []string) {
		for i, cell := range cells {
			widths[i] = max(widths[i], uniseg.StringWidth(cell))
		}
	}
	measure(t.headers)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

// writeLine pads each cell to its column width. Trailing padding is dropped.
func writeLine(sb *strings.Builder, cells []string, widths []int) {
	var line strings.Builder
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if i > 0 {
			line.WriteString(columnGap)
		}
		line.WriteString(cell)
		line.WriteString(strings.Repeat(" ", width-uniseg.StringWidth(cell)))
	}
	sb.WriteString(strings.TrimRight(line.String(), " "))
	sb.WriteByte('\n')
}
