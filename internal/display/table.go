package display

import (
	"strings"
	"unicode/utf8"
)

// Align is the horizontal alignment of a column.
type Align int

const (
	Left Align = iota
	Right
)

// Table renders an aligned text table. Widths are counted in runes so that
// localized headers line up.
type Table struct {
	headers   []string
	align     []Align
	rows      [][]string
	highlight int
	footnote  string
}

// NewTable creates a table with the given column headers, all left aligned.
func NewTable(headers []string) *Table {
	return &Table{
		headers:   headers,
		align:     make([]Align, len(headers)),
		highlight: -1,
	}
}

// SetAlign sets the alignment of column col.
func (t *Table) SetAlign(col int, a Align) {
	if col >= 0 && col < len(t.align) {
		t.align[col] = a
	}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(values []string) {
	t.rows = append(t.rows, values)
}

// SetHighlightRow marks row idx (0-based) for accent styling. -1 clears it.
func (t *Table) SetHighlightRow(idx int) {
	t.highlight = idx
}

// SetFootnote adds a gray note below the table.
func (t *Table) SetFootnote(note string) {
	t.footnote = note
}

// Render returns the table indented by two spaces.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if n := utf8.RuneCountInString(row[i]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("  " + Bold(t.line(t.headers, widths)) + "\n")

	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("─", w)
	}
	sb.WriteString("  " + Dim(strings.Join(rules, "  ")) + "\n")

	for i, row := range t.rows {
		line := t.line(row, widths)
		if i == t.highlight {
			line = Accent(line)
		}
		sb.WriteString("  " + line + "\n")
	}

	if t.footnote != "" {
		sb.WriteString("\n  " + Gray(t.footnote) + "\n")
	}
	return sb.String()
}

func (t *Table) line(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		pad := strings.Repeat(" ", w-utf8.RuneCountInString(cell))
		if t.align[i] == Right {
			parts[i] = pad + cell
		} else {
			parts[i] = cell + pad
		}
	}
	// Trailing padding on the last column is noise.
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
