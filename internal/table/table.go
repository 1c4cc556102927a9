// Package table cleans sparse spreadsheet grids and renders them as
// compact Markdown tables. Spreadsheets converted cell-by-cell tend to
// carry empty filler rows, placeholder headers, and values scattered
// rightward across merged cells; Clean normalizes that into a dense
// rectangular grid of strings.
package table

import (
	"strings"
)

// placeholderValue marks cells produced by header inference on unnamed
// columns. Rows carrying it are conversion artifacts, not data.
const placeholderValue = "Unnamed"

// Clean normalizes a spreadsheet grid, in order:
//   - rows whose cells are all empty are dropped
//   - rows containing a placeholder "Unnamed" value are dropped
//   - columns that are empty below the header row are dropped
//   - each row is left-packed: cells right of the first non-empty cell
//     are shifted left over the gaps, padding the tail with empties
//
// The result is rectangular: every row has the same number of columns.
// An empty input yields nil.
func Clean(rows [][]string) [][]string {
	rows = normalize(rows)
	if len(rows) == 0 {
		return nil
	}

	var kept [][]string
	for _, row := range rows {
		if isEmptyRow(row) || hasPlaceholder(row) {
			continue
		}
		kept = append(kept, row)
	}
	if len(kept) == 0 {
		return nil
	}

	kept = dropEmptyColumns(kept)
	for i, row := range kept {
		kept[i] = leftPack(row)
	}
	return kept
}

// normalize trims cell whitespace and pads rows to a common width.
func normalize(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil
	}

	out := make([][]string, len(rows))
	for i, row := range rows {
		padded := make([]string, width)
		for j, cell := range row {
			padded[j] = strings.TrimSpace(cell)
		}
		out[i] = padded
	}
	return out
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

func hasPlaceholder(row []string) bool {
	for _, cell := range row {
		if strings.Contains(cell, placeholderValue) {
			return true
		}
	}
	return false
}

// leftPack shifts the cells right of the first non-empty cell over any
// gaps, keeping the leading empty cells (indentation) in place.
func leftPack(row []string) []string {
	first := -1
	for i, cell := range row {
		if cell != "" {
			first = i
			break
		}
	}
	if first < 0 {
		return row
	}

	packed := make([]string, 0, len(row))
	packed = append(packed, row[:first]...)
	for _, cell := range row[first:] {
		if cell != "" {
			packed = append(packed, cell)
		}
	}
	for len(packed) < len(row) {
		packed = append(packed, "")
	}
	return packed
}

// dropEmptyColumns removes columns with no values below the header row.
func dropEmptyColumns(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}

	width := len(rows[0])
	keep := make([]bool, width)
	for _, row := range rows[1:] {
		for j, cell := range row {
			if cell != "" {
				keep[j] = true
			}
		}
	}
	// A single-row table (header only) keeps its non-empty columns.
	if len(rows) == 1 {
		for j, cell := range rows[0] {
			if cell != "" {
				keep[j] = true
			}
		}
	}

	var out [][]string
	for _, row := range rows {
		cells := make([]string, 0, width)
		for j, cell := range row {
			if keep[j] {
				cells = append(cells, cell)
			}
		}
		out = append(out, cells)
	}
	return out
}

// Render formats a rectangular grid as a compact Markdown pipe table.
// The first row is the header. Pipe characters inside cells are escaped.
// Empty input renders as an empty string.
func Render(rows [][]string) string {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return ""
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, cell := range cells {
			b.WriteString(strings.ReplaceAll(cell, "|", "\\|"))
			b.WriteString("|")
		}
		b.WriteString("\n")
	}

	writeRow(rows[0])
	b.WriteString("|")
	for range rows[0] {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}

	return strings.TrimRight(b.String(), "\n")
}
